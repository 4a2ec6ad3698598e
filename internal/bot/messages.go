package bot

import (
	"fmt"
	"strings"
	"time"

	"promo-campaign/internal/model"
)

// Menu button labels. The transport renders these as reply-keyboard buttons
// and echoes the label back as plain text when pressed.
const (
	MenuSubmitCode  = "Submit code"
	MenuMyCodes     = "My codes"
	MenuAskQuestion = "Ask a question"
	MenuBroadcast   = "Broadcast"
	MenuStats       = "Stats"
)

// isMenuCommand reports whether text is a recognized menu token. Such
// tokens arriving in the wrong stage are ignored rather than misread as a
// code or a name.
func isMenuCommand(text string) bool {
	switch text {
	case MenuSubmitCode, MenuMyCodes, MenuAskQuestion, MenuBroadcast, MenuStats:
		return true
	}
	return false
}

const (
	msgWelcome = "Welcome to the campaign!\n\n" +
		"Every purchase is a chance to win.\n" +
		"To register, share your phone number using the button below."

	msgSharePhonePrompt = "Please share your phone number using the button below."

	msgManualPhoneRejected = "Please don't type your phone number manually.\n" +
		"Use the share button below instead."

	msgPhoneInvalid = "That phone number doesn't look valid.\n" +
		"Share a number with a country code using the button below."

	msgPhoneTaken = "This phone number is already registered.\n" +
		"Share a different number."

	msgAskName    = "Enter your first name:"
	msgAskSurname = "Enter your surname:"

	msgCodePrompt = "Send a code (for example: AR-9K2M4P):"

	msgMalformedCode = "The code format is wrong. Example: AR-9K2M4P"

	msgNotRegistered = "You are not registered yet.\n" +
		"Please share your phone number first."

	msgQuotaExceeded = "You have reached the maximum of 10 codes."

	msgRetry = "Something went wrong. Please try again."

	msgPermissionDenied = "You are not allowed to do that."

	msgAskQuestionPrompt = "Write your question and we will get back to you:"
	msgQuestionForwarded = "Thanks! Your question was forwarded to the campaign team."

	msgBroadcastPrompt = "Write the message to send to all participants:"

	msgAnswerPrompt = "Write your answer to the participant:"
)

func msgGreeting(name string, chances int) string {
	return fmt.Sprintf("Hello, %s!\n\nYou have %d chances.\nSend a new code or view your codes.", name, chances)
}

func msgRegistered(p *model.Participant) string {
	return fmt.Sprintf("You are registered!\nName: %s %s\nPhone: %s\n\nPress %q to submit your first code.",
		p.Name, p.Surname, p.Phone, MenuSubmitCode)
}

func msgCodeAccepted(r *model.RedemptionResult) string {
	return fmt.Sprintf("Code accepted!\nCode: %s\nTotal codes: %d\nChances: %d", r.Code, r.TotalCodes, r.Chances)
}

func msgDeepLinkAccepted(r *model.RedemptionResult) string {
	return fmt.Sprintf("Code from your invitation link accepted!\nCode: %s\nTotal codes: %d\nChances: %d",
		r.Code, r.TotalCodes, r.Chances)
}

func msgCodeNotFound(code string) string {
	return fmt.Sprintf("This code was not found: %s\nPlease check and try again.", code)
}

func msgCodeAlreadyAssigned(code string) string {
	return fmt.Sprintf("This code was already used: %s\nEach code can be used only once.", code)
}

func msgDeepLinkFailed(code, reason string) string {
	return fmt.Sprintf("The code from your invitation link could not be applied: %s\n%s\nYou can still submit a different code.", code, reason)
}

func msgMyCodes(codes []*model.Code, chances int) string {
	if len(codes) == 0 {
		return "You have no codes yet. Send your first one!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your codes (%d):\n", len(codes))
	for _, c := range codes {
		if c.AssignedAt != nil {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Code, c.AssignedAt.Format(time.DateOnly))
		} else {
			fmt.Fprintf(&b, "- %s\n", c.Code)
		}
	}
	fmt.Fprintf(&b, "\nChances: %d", chances)
	return b.String()
}

func msgStats(s *model.CampaignStats) string {
	return fmt.Sprintf("Campaign stats:\nParticipants: %d\nCodes assigned: %d / %d",
		s.Participants, s.CodesAssigned, s.CodesTotal)
}

func msgBroadcastSummary(s *model.BroadcastSummary) string {
	return fmt.Sprintf("Broadcast finished.\nDelivered: %d\nFailed: %d", s.Sent, s.Failed)
}

func msgQuestionForOperator(p *model.Participant, ticket, question string) string {
	return fmt.Sprintf("Question from %s %s (%s):\n\n%s\n\nReply with: /reply %s",
		p.Name, p.Surname, p.Phone, question, ticket)
}

func msgAnswerForParticipant(answer string) string {
	return fmt.Sprintf("Answer from the campaign team:\n\n%s", answer)
}

func msgAnswerDelivered(delivered bool) string {
	if delivered {
		return "Your answer was delivered."
	}
	return "Your answer could not be delivered."
}
