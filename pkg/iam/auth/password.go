package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hr/funnel/pkg/errx"
)

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
	// DummyVerify costs as much as a failed Verify without needing a hash.
	DummyVerify(plain string)
}

// BcryptPasswordService implements PasswordService with bcrypt. The cost is
// chosen so a single verify takes tens of milliseconds on current hardware,
// which throttles online guessing.
type BcryptPasswordService struct {
	cost int
}

func NewBcryptPasswordService() *BcryptPasswordService {
	return &BcryptPasswordService{cost: 12}
}

func (s *BcryptPasswordService) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}
	return string(hashed), nil
}

// Verify returns ErrInvalidCredentials on mismatch. bcrypt's comparison is
// constant-time over the hash.
func (s *BcryptPasswordService) Verify(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrInvalidCredentials()
	}
	return nil
}

// DummyVerify burns a bcrypt comparison so lookups on unknown emails take as
// long as real mismatches. The hash below is of an unguessable random value.
func (s *BcryptPasswordService) DummyVerify(plain string) {
	const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plain))
}
