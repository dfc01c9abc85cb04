package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"mealplan-go/internal/planner"
)

// testHeader marks data "encrypted" by TestEncryptor.
var testHeader = []byte("MPTEST\x00\x01")

// errBadHeader is returned when decrypting data TestEncryptor did not write.
var errBadHeader = errors.New("missing test encryption header")

// TestEncryptor prepends a fixed header on Encrypt and strips it on Decrypt.
// Output differs from the input without any key material.
type TestEncryptor struct {
	passphrase string
}

var _ planner.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup records passphrase; Unlock then requires the same one.
func (e *TestEncryptor) Setup(passphrase string) error {
	e.passphrase = passphrase
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (planner.DecryptionContext, error) {
	if e.passphrase != "" && passphrase != e.passphrase {
		return nil, ErrWrongPassphrase
	}
	return testDecryption{}, nil
}

func (e *TestEncryptor) IsConfigured() bool { return true }

type testDecryption struct{}

func (testDecryption) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return errBadHeader
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// NoneEncryptor stores snapshots as plaintext.
type NoneEncryptor struct{}

var _ planner.Encryptor = NoneEncryptor{}

func (NoneEncryptor) Setup(string) error { return nil }

func (NoneEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, r)
	return err
}

func (NoneEncryptor) Unlock(string) (planner.DecryptionContext, error) {
	return plaintext{}, nil
}

func (NoneEncryptor) IsConfigured() bool { return true }

type plaintext struct{}

func (plaintext) Decrypt(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, r)
	return err
}
