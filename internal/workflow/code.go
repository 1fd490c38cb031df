package workflow

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/alexedwards/argon2id"
)

// Light parameters: the code has six digits and expires within minutes.
var codeHashParams = &argon2id.Params{
	Memory:      16 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code string) (string, error) {
	return argon2id.CreateHash(code, codeHashParams)
}

func codeMatches(code, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(code, hash)
}
