// Package altcha solves the SHA-256 proof-of-work challenges issued by the
// upstream chat provider and encodes the signed solution it expects back.
package altcha

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/fwojciec/docchat"
)

// checkInterval is the number of hashes computed between context checks.
const checkInterval = 4096

// Ensure Solver implements docchat.ChallengeSolver at compile time.
var _ docchat.ChallengeSolver = (*Solver)(nil)

// Solver brute-forces challenges by hashing salt||decimal(n) for ascending n.
// Solver holds no state and is safe for concurrent use.
type Solver struct{}

// NewSolver creates a new Solver.
func NewSolver() *Solver {
	return &Solver{}
}

// Solve returns the Base64-encoded solution for the smallest nonce in
// [0, d.MaxNumber] whose hex SHA-256 digest equals d.Challenge.
func (s *Solver) Solve(ctx context.Context, d *docchat.ChallengeDescriptor) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	n, err := Search(ctx, d.Salt, d.Challenge, d.MaxNumber)
	if err != nil {
		return "", err
	}

	return Encode(&docchat.ChallengeSolution{
		Number:    n,
		Algorithm: docchat.ChallengeAlgorithm,
		Challenge: d.Challenge,
		MaxNumber: d.MaxNumber,
		Salt:      d.Salt,
		Signature: d.Signature,
	})
}

// Search returns the smallest n in [0, max] such that the lowercase hex
// SHA-256 digest of salt followed by the decimal form of n equals target.
// The comparison is case-sensitive. Returns EEXHAUSTED when no n matches.
func Search(ctx context.Context, salt, target string, max int64) (int64, error) {
	if max < 0 {
		return 0, docchat.Errorf(docchat.EINVALID, "challenge maxnumber must not be negative")
	}

	buf := make([]byte, 0, len(salt)+20)
	buf = append(buf, salt...)
	var digest [sha256.Size * 2]byte

	for n := int64(0); ; n++ {
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		buf = strconv.AppendInt(buf[:len(salt)], n, 10)
		sum := sha256.Sum256(buf)
		hex.Encode(digest[:], sum[:])
		if string(digest[:]) == target {
			return n, nil
		}

		if n == max {
			break
		}
	}

	return 0, docchat.Errorf(docchat.EEXHAUSTED, "no solution within maxnumber=%d", max)
}

// Encode serializes the solution as JSON with ", " and ": " separators,
// fields in declaration order, non-ASCII escaped and HTML characters left
// as is. The result is returned as standard padded Base64.
func Encode(sol *docchat.ChallengeSolution) (string, error) {
	var b strings.Builder
	b.WriteString(`{"number": `)
	b.WriteString(strconv.FormatInt(sol.Number, 10))
	b.WriteString(`, "algorithm": `)
	if err := writeString(&b, sol.Algorithm); err != nil {
		return "", err
	}
	b.WriteString(`, "challenge": `)
	if err := writeString(&b, sol.Challenge); err != nil {
		return "", err
	}
	b.WriteString(`, "maxnumber": `)
	b.WriteString(strconv.FormatInt(sol.MaxNumber, 10))
	b.WriteString(`, "salt": `)
	if err := writeString(&b, sol.Salt); err != nil {
		return "", err
	}
	b.WriteString(`, "signature": `)
	if err := writeString(&b, sol.Signature); err != nil {
		return "", err
	}
	b.WriteString("}")
	return base64.StdEncoding.EncodeToString([]byte(b.String())), nil
}

// writeString writes s as a quoted JSON string with every non-ASCII rune
// escaped as \uXXXX, using surrogate pairs outside the BMP.
func writeString(b *strings.Builder, s string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	for _, r := range strings.TrimSuffix(buf.String(), "\n") {
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(b, "\\u%04x\\u%04x", hi, lo)
		default:
			fmt.Fprintf(b, "\\u%04x", r)
		}
	}
	return nil
}

// Decode reverses Encode.
func Decode(s string) (*docchat.ChallengeSolution, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, docchat.Errorf(docchat.EINVALID, "invalid solution encoding: %v", err)
	}
	var sol docchat.ChallengeSolution
	if err := json.Unmarshal(data, &sol); err != nil {
		return nil, docchat.Errorf(docchat.EINVALID, "invalid solution payload: %v", err)
	}
	return &sol, nil
}
