package auth

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// OTPLength is the number of digits in a passcode.
const OTPLength = 6

var otpSpace = big.NewInt(1_000_000)

// CodeGenerator draws six-digit passcodes from a random source.
type CodeGenerator struct {
	random io.Reader
}

// NewCodeGenerator creates a generator. A nil reader uses crypto/rand.
func NewCodeGenerator(random io.Reader) *CodeGenerator {
	if random == nil {
		random = rand.Reader
	}
	return &CodeGenerator{random: random}
}

// Generate returns a zero-padded six-digit code.
func (g *CodeGenerator) Generate() (string, error) {
	n, err := rand.Int(g.random, otpSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NormalizeOTP trims whitespace so client input compares as a plain string.
func NormalizeOTP(s string) string {
	return strings.TrimSpace(s)
}
