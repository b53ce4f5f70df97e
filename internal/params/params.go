package params

const (
	SecParam  = 256
	SecBytes  = SecParam / 8
	StatParam = 80

	// ZKModIterations is the number of iterations that are performed to prove the validity of
	// a Paillier-Blum modulus N.
	// The key setup proof is non-interactive and not bound to a secret nonce, so the full
	// statistical security parameter is used.
	ZKModIterations = StatParam

	BitsBlumPrime = 4 * SecParam      // = 1024
	BitsPaillier  = 2 * BitsBlumPrime // = 2048

	// BitsCandidate is the default size of a jointly generated RSA modulus.
	BitsCandidate = 2048
	// MinBitsCandidate is the smallest candidate size accepted by a configuration.
	MinBitsCandidate = 16

	// TrialDivisionBound is the default exclusive upper bound on the sieving primes.
	TrialDivisionBound = 1000

	// BlumOffset is the public constant added to the scaled candidate, N = 4⋅(p₀+p₁) + 3.
	BlumOffset = 3
	// BlumScale is the public factor applied to each candidate share.
	BlumScale = 4
)
