package reminder

import (
	"fmt"
	"strings"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
)

// UI texts in English
const (
	startFmt = "Hi, %s! 🌟\n\n" +
		"I will remind you about your vitamins!\n\n" +
		"📅 Schedule for %s:\n" +
		"• %s - morning vitamins\n" +
		"• %s - lunch vitamins\n" +
		"• %s - last reminder\n\n" +
		"Commands:\n" +
		"/status - today's status\n" +
		"/reset - reset today\n" +
		"/schedule - show the schedule"

	statusFmt      = "Status for today (%s):\n\n%s Morning vitamins\n%s Lunch vitamins"
	statusAllTaken = "🎉 All vitamins taken! Well done!"

	scheduleFmt = "📅 Schedule for %s:\n\n" +
		"⏰ Morning vitamins:\n" +
		"  • %s - first reminder\n" +
		"  • %s - repeat\n\n" +
		"⏰ Lunch vitamins:\n" +
		"  • %s - first reminder\n" +
		"  • %s - repeat\n\n" +
		"⏰ Final:\n" +
		"  • %s - last chance! 😊"

	resetText       = "Status reset! You can start over 🔄"
	alreadyDoneText = "Everything is already taken today! 🎉"
	laterText       = "Okay, I'll remind you later! ⏰"
	helpText        = "Please use the 'Yes' or 'No' buttons, or the commands /status, /reset, /schedule 😊"

	morningFirstText  = "🌅 Good morning! Time for your morning vitamins! 💊\n\nCan you take them now?"
	morningSecondText = "⏰ A reminder about your morning vitamins! 💊\n\nCan you take them now?"
	lunchWithMorning  = "🍽 Time for your lunch vitamins! 💊\n\n⚠️ Looks like the morning vitamins are not taken yet!\n\nCan you take BOTH?"
	lunchText         = "🍽 Time for your lunch vitamins! 💊\n\nCan you take them now?"
	overdueBothText   = "⏰ A reminder about your vitamins! 💊\n\n⚠️ Morning and lunch vitamins are both still pending!\n\nCan you take both?"
	lunchRepeatText   = "⏰ A reminder about your lunch vitamins! 💊\n\nCan you take them now?"
	finalMissingFmt   = "🚨 Last reminder for today! 🚨\n\nStill missing: %s vitamins!\n\nCan you take them now?"
	congratsText      = "🎉 Great! All vitamins are taken today! Well done! 💪✨"
)

func reminderText(d Decision) string {
	switch d.Variant {
	case VariantMorningFirst:
		return morningFirstText
	case VariantMorningSecond:
		return morningSecondText
	case VariantLunchWithMorning:
		return lunchWithMorning
	case VariantLunch:
		return lunchText
	case VariantOverdueBoth:
		return overdueBothText
	case VariantLunchRepeat:
		return lunchRepeatText
	case VariantFinalMissing:
		return fmt.Sprintf(finalMissingFmt, joinDoses(d.Missing))
	case VariantCongratulation:
		return congratsText
	default:
		return ""
	}
}

// joinDoses renders dose names joined with "and".
func joinDoses(doses []domain.Dose) string {
	names := make([]string, len(doses))
	for i, d := range doses {
		names[i] = string(d)
	}
	return strings.Join(names, " and ")
}

func confirmedText(d domain.Dose) string {
	if d == domain.DoseMorning {
		return "Great! Morning vitamins taken! 💊✨"
	}
	return "Great! Lunch vitamins taken! 💊✨"
}

func dayLabel(dt domain.DayType) string {
	if dt == domain.Weekend {
		return "weekends"
	}
	return "weekdays"
}

func mark(taken bool) string {
	if taken {
		return "✅"
	}
	return "❌"
}
