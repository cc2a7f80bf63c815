// Package password hashes and verifies user passwords.
//
// New hashes use Argon2id encoded in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<key>
//
// Salt and key are base64 (standard alphabet, no padding). Every call to
// Hash draws a fresh random salt, so hashing the same password twice yields
// different strings; Verify recomputes the key with the parameters embedded
// in the hash and compares in constant time.
//
// Verify also accepts bcrypt hashes ($2a$, $2b$, $2y$) so accounts imported
// from older systems keep working. NeedsRehash reports such hashes, as well
// as Argon2id hashes produced with weaker parameters than the hasher's
// current ones, so callers can upgrade them after a successful login.
//
// Verify never panics or returns an error on malformed input; an unparsable
// hash simply does not match.
//
// # Usage
//
//	hasher := password.New(password.DefaultParams())
//
//	hash, err := hasher.Hash("correct horse battery staple")
//	if err != nil {
//		return err
//	}
//
//	if hasher.Verify("correct horse battery staple", hash) {
//		// authenticated
//	}
package password
