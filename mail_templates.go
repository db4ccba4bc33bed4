package secureauth

import (
	"fmt"
	"net/url"
	"time"
)

// verifyEmailTemplate builds the account-confirmation email. The link lands
// on the host application's confirm page with the code as a query parameter.
func verifyEmailTemplate(appOrigin, code string) Email {
	link := appOrigin + "/confirm-account?code=" + url.QueryEscape(code)
	return Email{
		Subject: "Confirm your account",
		Text: fmt.Sprintf(
			"Welcome!\n\nConfirm your account by opening the link below:\n\n%s\n\nIf you did not create this account, ignore this email.\n",
			link,
		),
		HTML: fmt.Sprintf(
			`<p>Welcome!</p><p>Confirm your account by clicking the link below:</p><p><a href=%q>Confirm account</a></p><p>If you did not create this account, ignore this email.</p>`,
			link,
		),
	}
}

// resetPasswordTemplate builds the password-reset email. The expiry is
// carried in the link so the reset page can show a countdown without a
// round trip.
func resetPasswordTemplate(appOrigin, code string, expiresAt time.Time) Email {
	link := fmt.Sprintf("%s/reset-password?code=%s&exp=%d",
		appOrigin, url.QueryEscape(code), expiresAt.Unix())
	return Email{
		Subject: "Reset your password",
		Text: fmt.Sprintf(
			"A password reset was requested for your account.\n\nReset your password by opening the link below:\n\n%s\n\nThis link expires at %s. If you did not request a reset, ignore this email.\n",
			link, expiresAt.UTC().Format(time.RFC1123),
		),
		HTML: fmt.Sprintf(
			`<p>A password reset was requested for your account.</p><p><a href=%q>Reset password</a></p><p>This link expires at %s. If you did not request a reset, ignore this email.</p>`,
			link, expiresAt.UTC().Format(time.RFC1123),
		),
	}
}
