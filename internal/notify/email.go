// AngelaMos | 2026
// email.go

package notify

import (
	"fmt"
	"strings"
)

const (
	KindThreadInvite       = "thread_invite"
	KindPasswordReset      = "password_reset"
	KindPurchaseRequested  = "purchase_requested"
	KindPurchaseAccepted   = "purchase_accepted"
	KindMembershipDecision = "membership_decision"
	KindContact            = "contact"
)

// Email is one queued message. RetryAt is the unix time before which a
// retried email is not sent.
type Email struct {
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Attempt int    `json:"attempt"`
	RetryAt int64  `json:"retry_at,omitempty"`
}

func (e Email) Validate() error {
	if strings.TrimSpace(e.To) == "" {
		return fmt.Errorf("email recipient is required")
	}
	if strings.ContainsAny(e.To, "\r\n") || strings.ContainsAny(e.Subject, "\r\n") {
		return fmt.Errorf("email headers must not contain line breaks")
	}
	return nil
}

func ThreadInviteEmail(to, threadName, acceptURL string) Email {
	return Email{
		Kind:    KindThreadInvite,
		To:      to,
		Subject: fmt.Sprintf("You're invited to join %s", threadName),
		Body: fmt.Sprintf(
			"You have been invited to join the thread %q.\n\n"+
				"Accept the invitation here:\n%s\n\n"+
				"This link expires in 7 days.\n",
			threadName, acceptURL,
		),
	}
}

func PasswordResetEmail(to, otp string) Email {
	return Email{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: "Your password reset code",
		Body: fmt.Sprintf(
			"Use this code to reset your password: %s\n\n"+
				"If you did not request a reset you can ignore this message.\n",
			otp,
		),
	}
}

func PurchaseRequestedEmail(to, beadName, offer string) Email {
	return Email{
		Kind:    KindPurchaseRequested,
		To:      to,
		Subject: fmt.Sprintf("New offer on %s", beadName),
		Body:    fmt.Sprintf("Someone offered %s for %q.\n", offer, beadName),
	}
}

func PurchaseAcceptedEmail(to, beadName string) Email {
	return Email{
		Kind:    KindPurchaseAccepted,
		To:      to,
		Subject: fmt.Sprintf("Your offer on %s was accepted", beadName),
		Body:    fmt.Sprintf("Congratulations, you now own %q.\n", beadName),
	}
}

func MembershipDecisionEmail(to, threadName string, approved bool) Email {
	verdict := "declined"
	if approved {
		verdict = "approved"
	}
	return Email{
		Kind:    KindMembershipDecision,
		To:      to,
		Subject: fmt.Sprintf("Your request to join %s was %s", threadName, verdict),
		Body:    fmt.Sprintf("Your request to join %q was %s.\n", threadName, verdict),
	}
}

func ContactEmail(to, name, from, message string) Email {
	return Email{
		Kind:    KindContact,
		To:      to,
		Subject: fmt.Sprintf("Contact form message from %s", name),
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s\n", name, from, message),
	}
}
