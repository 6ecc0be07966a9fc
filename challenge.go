package docchat

import "context"

// ChallengeAlgorithm is the only proof-of-work hash the upstream issues.
const ChallengeAlgorithm = "SHA-256"

// ChallengeDescriptor is a proof-of-work puzzle issued by the upstream
// challenge endpoint. It is never mutated; Signature is forwarded as is.
type ChallengeDescriptor struct {
	Algorithm string `json:"algorithm"`
	Challenge string `json:"challenge"`
	MaxNumber int64  `json:"maxnumber"`
	Salt      string `json:"salt"`
	Signature string `json:"signature"`
}

// Validate returns an error if the descriptor cannot be solved.
func (d *ChallengeDescriptor) Validate() error {
	if d.Challenge == "" {
		return Errorf(EINVALID, "challenge hash required")
	}
	if d.Salt == "" {
		return Errorf(EINVALID, "challenge salt required")
	}
	if d.Signature == "" {
		return Errorf(EINVALID, "challenge signature required")
	}
	if d.MaxNumber < 0 {
		return Errorf(EINVALID, "challenge maxnumber must not be negative")
	}
	if d.Algorithm != "" && d.Algorithm != ChallengeAlgorithm {
		return Errorf(EINVALID, "unsupported challenge algorithm %q", d.Algorithm)
	}
	return nil
}

// ChallengeSolution is the signed answer to a ChallengeDescriptor.
// Field order is part of the wire format: the encoded solution must be
// byte-reproducible for a given descriptor and number.
type ChallengeSolution struct {
	Number    int64  `json:"number"`
	Algorithm string `json:"algorithm"`
	Challenge string `json:"challenge"`
	MaxNumber int64  `json:"maxnumber"`
	Salt      string `json:"salt"`
	Signature string `json:"signature"`
}

// ChallengeSolver brute-forces proof-of-work challenges.
type ChallengeSolver interface {
	// Solve returns the encoded solution for the smallest satisfying nonce.
	// Returns EEXHAUSTED if no nonce in [0, MaxNumber] satisfies the
	// challenge, and the context error if ctx is done first.
	Solve(ctx context.Context, d *ChallengeDescriptor) (string, error)
}
