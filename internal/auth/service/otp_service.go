package service

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	apperrors "github.com/bouncr/iam/internal/errors"
)

// OTPConfig configures TOTP generation and validation.
type OTPConfig struct {
	Issuer string
	Period time.Duration
	Skew   int
}

type otpService struct {
	issuer string
	opts   totp.ValidateOpts
}

// NewOTPService creates an RFC 6238 OTPService with six digit SHA1 codes.
func NewOTPService(cfg OTPConfig) OTPService {
	period := cfg.Period
	if period <= 0 {
		period = 30 * time.Second
	}
	skew := cfg.Skew
	if skew < 0 {
		skew = 0
	}
	return &otpService{
		issuer: cfg.Issuer,
		opts: totp.ValidateOpts{
			Period:    uint(period / time.Second),
			Skew:      uint(skew),
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		},
	}
}

func (s *otpService) Generate(account string) (*authDomain.OTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: account,
		Period:      s.opts.Period,
		Digits:      s.opts.Digits,
		Algorithm:   s.opts.Algorithm,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate otp key")
	}
	return &authDomain.OTPEnrollment{Secret: key.Secret(), URI: key.URL()}, nil
}

func (s *otpService) Validate(code, secret string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, t.UTC(), s.opts)
	return err == nil && ok
}

func (s *otpService) Window() time.Duration {
	return time.Duration(2*s.opts.Skew+1) * time.Duration(s.opts.Period) * time.Second
}
