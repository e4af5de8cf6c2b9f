package auth

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpSkew allows codes from the adjacent 30s periods, bounding clock drift
// between server and authenticator device.
const totpSkew = 1

// GenerateTOTPSecret enrolls a new time-based one-time-password secret for
// the account and returns the base32 secret together with its otpauth
// provisioning URI (scannable by authenticator apps).
func GenerateTOTPSecret(issuer, account string) (secret, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		SecretSize:  20,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTOTP reports whether the submitted code matches the secret within the
// bounded skew window.
func VerifyTOTP(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
