package task

import (
	"fmt"

	crank "github.com/spetersoncode/crank"
)

// Canned conversation text injected by the orchestrator. These are protocol
// messages addressed to the model, written so it can self-correct.

const noToolUsedMessage = "[ERROR] You did not use a tool in your previous response. " +
	"Every response must invoke exactly one tool. Retry, and either continue the task " +
	"with a tool use or signal completion with the finish tool."

const interruptionMarker = "\n\n[Response interrupted before completion]"

const streamInterruptedNotice = "[The previous response was cut off by a streaming failure. " +
	"Resume from where the conversation left off without repeating completed work.]"

const completionFeedbackNotice = "The user is not satisfied with the result and provided feedback. " +
	"Address the feedback and attempt completion again."

func rejectionNotice(toolName string) string {
	return fmt.Sprintf("The user denied the %s operation.", toolName)
}

func feedbackNotice(text string) string {
	return "The user provided the following feedback:\n<feedback>\n" + text + "\n</feedback>"
}

func toolResultHeader(toolName string) string {
	return fmt.Sprintf("[%s] Result:", toolName)
}

func mistakeLimitPayload(count int) string {
	return fmt.Sprintf(
		"The assistant has made %d consecutive unproductive responses. Continue the task anyway?", count)
}

// appendFeedback appends the operator's optional text and images to parts,
// text first, preserving the notice-then-feedback ordering.
func appendFeedback(parts []crank.ContentPart, resp AskResponse) []crank.ContentPart {
	if resp.Text != "" {
		parts = append(parts, crank.NewTextPart(feedbackNotice(resp.Text)))
	}
	parts = append(parts, resp.Images...)
	return parts
}
