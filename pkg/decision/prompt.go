package decision

import (
	"fmt"
	"strings"
	"time"

	"aurelia/pkg/memory"
)

// persona is the static base instruction, turn 1 of the system prompt
// assembly.
const persona = `You are the voice of a helpful, concise conversational assistant. You speak naturally and never reveal your internal reasoning or tool mechanics to the user.`

const normalTaskInstruction = `For this turn you must: (a) interpret the user's input and any attached files, (b) decide whether a tool call is required to answer, (c) produce a reply, and (d) choose an inactivity_timeout in seconds for how long to wait before following up if the user goes silent (-1 means do not follow up). Respond with exactly one JSON object matching the required output format.`

const reminderTaskInstruction = `The user has been silent since you last chose an inactivity_timeout. Produce a short, natural, spontaneous utterance as if you were checking in — never mention timers or silence explicitly. The response field MUST be non-empty. Respond with exactly one JSON object matching the required output format.`

// buildSystemPrompts assembles the six-part system prompt in order,
// each part as its own system turn. personaOverride replaces the
// default persona when non-empty, letting an operator set a custom
// assistant personality via config.json's system_prompt field.
func buildSystemPrompts(personaOverride string, isReminder bool, now time.Time, snapshot string, haveSnapshot bool, recent []memory.Conversation, schemaBlock string) []string {
	p := persona
	if personaOverride != "" {
		p = personaOverride
	}
	parts := []string{p}

	if isReminder {
		parts = append(parts, reminderTaskInstruction)
	} else {
		parts = append(parts, normalTaskInstruction)
	}

	parts = append(parts, situationalContext(now))

	if haveSnapshot && snapshot != "" {
		parts = append(parts, "Long-term memory snapshot:\n"+snapshot)
	}

	if len(recent) > 0 {
		parts = append(parts, recentConversationsBlock(recent))
	}

	parts = append(parts, schemaBlock)
	return parts
}

func situationalContext(now time.Time) string {
	return fmt.Sprintf(
		"Current context: %s, %s, season=%s, time_of_day=%s. Use these only when it reads naturally — never force them into every reply.",
		now.Format("2006-01-02 15:04"), now.Weekday(), seasonBucket(now.Month()), timeOfDayBucket(now.Hour()),
	)
}

func seasonBucket(m time.Month) string {
	switch m {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "autumn"
	default:
		return "winter"
	}
}

func timeOfDayBucket(hour int) string {
	switch {
	case hour >= 4 && hour < 7:
		return "early-morning"
	case hour >= 7 && hour < 11:
		return "morning"
	case hour >= 11 && hour < 14:
		return "midday"
	case hour >= 14 && hour < 19:
		return "evening"
	case hour >= 19 && hour < 23:
		return "night"
	default: // 23:00 - 03:59
		return "late-night"
	}
}

func recentConversationsBlock(recent []memory.Conversation) string {
	var sb strings.Builder
	sb.WriteString("Recent past conversations (oldest first):\n")
	for _, c := range recent {
		fmt.Fprintf(&sb, "- [%s -> %s, %s]: %s\n", c.Metadata.StartTime, c.Metadata.EndTime, c.Metadata.Participant, c.Text)
	}
	return sb.String()
}

func outputFormatBlock() string {
	return "Output format — respond with exactly one JSON object, no surrounding prose, matching this schema:\n" + outputSchema
}
