package zkproof

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/221-V/NIICHAVO/stoich"
)

// Prover compiles the batch circuit for one net and generates and
// verifies Groth16 proofs against it. Compilation and trusted setup
// run once in NewProver; Prove and Verify are safe for concurrent use.
type Prover struct {
	mu  sync.RWMutex
	net *stoich.Net

	curve ecc.ID
	cs    constraint.ConstraintSystem
	pk    groth16.ProvingKey
	vk    groth16.VerifyingKey
}

// Proof is a generated proof with its public witness.
type Proof struct {
	proof  groth16.Proof
	public witness.Witness

	// Constraints is the size of the compiled circuit.
	Constraints int
}

// Bytes returns the serialized proof.
func (p *Proof) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("marshal proof: %w", err)
	}
	return buf.Bytes(), nil
}

// PublicWitnessBytes returns the serialized public witness.
func (p *Proof) PublicWitnessBytes() ([]byte, error) {
	return p.public.MarshalBinary()
}

// NewProver compiles the circuit for net on BN254 and runs the
// trusted setup. This is the expensive step; reuse the prover for
// every batch over the same net.
func NewProver(net *stoich.Net) (*Prover, error) {
	circuit, err := NewCircuit(net)
	if err != nil {
		return nil, err
	}

	curve := ecc.BN254
	cs, err := frontend.Compile(curve.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}

	return &Prover{
		net:   net,
		curve: curve,
		cs:    cs,
		pk:    pk,
		vk:    vk,
	}, nil
}

// Constraints returns the compiled circuit size.
func (p *Prover) Constraints() int {
	return p.cs.GetNbConstraints()
}

// Prove generates a proof that counts firings of the net's reactions
// transform pre into post. pre and post are per-species balances and
// counts per-reaction firing counts, all in net declaration order.
func (p *Prover) Prove(pre, post, counts []uint64) (*Proof, error) {
	if len(pre) != len(p.net.Species) || len(post) != len(p.net.Species) {
		return nil, fmt.Errorf("zkproof: balance vectors must have %d entries", len(p.net.Species))
	}
	if len(counts) != len(p.net.Reactions) {
		return nil, fmt.Errorf("zkproof: counts must have %d entries", len(p.net.Reactions))
	}

	assignment := NewAssignment(pre, post, counts)
	w, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	proof, err := groth16.Prove(p.cs, p.pk, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	public, err := w.Public()
	if err != nil {
		return nil, fmt.Errorf("public witness extraction failed: %w", err)
	}

	return &Proof{
		proof:       proof,
		public:      public,
		Constraints: p.cs.GetNbConstraints(),
	}, nil
}

// Verify checks a proof against the prover's verifying key and the
// proof's public witness.
func (p *Prover) Verify(proof *Proof) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return groth16.Verify(proof.proof, p.vk, proof.public)
}

// VerifyAgainst checks a proof against explicit public balance
// vectors rather than the witness carried by the proof.
func (p *Prover) VerifyAgainst(proof *Proof, pre, post []uint64) error {
	assignment := NewAssignment(pre, post, make([]uint64, len(p.net.Reactions)))
	w, err := frontend.NewWitness(assignment, p.curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return groth16.Verify(proof.proof, p.vk, w)
}

// ExpectedPost applies counts firings to pre and returns the
// resulting balance vector, or an error when a species would go
// negative. Useful for building assignments from ledger snapshots.
func ExpectedPost(net *stoich.Net, pre, counts []uint64) ([]uint64, error) {
	if len(pre) != len(net.Species) {
		return nil, fmt.Errorf("zkproof: balance vector must have %d entries", len(net.Species))
	}
	if len(counts) != len(net.Reactions) {
		return nil, fmt.Errorf("zkproof: counts must have %d entries", len(net.Reactions))
	}

	index := make(map[string]int, len(net.Species))
	for i, sp := range net.Species {
		index[sp.ID] = i
	}

	post := append([]uint64(nil), pre...)
	for r, reaction := range net.Reactions {
		if counts[r] == 0 {
			continue
		}
		for _, t := range reaction.Consumes {
			needed := t.Amount * counts[r]
			i := index[t.Species]
			if post[i] < needed {
				return nil, fmt.Errorf("zkproof: %s would go negative firing %s", t.Species, reaction.ID)
			}
			post[i] -= needed
		}
		for _, t := range reaction.Produces {
			post[index[t.Species]] += t.Amount * counts[r]
		}
	}
	return post, nil
}
