package evm

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Simulator is an in-process Writer used when no contract is deployed. It
// mimics the testnet latency with a fixed delay and hands out generated
// 32-byte hashes.
type Simulator struct {
	mu          sync.Mutex
	owner       string
	delay       time.Duration
	categories  []string
	percentages []uint64
	writeErr    error
	confirmErr  error
}

func NewSimulator(owner string, delay time.Duration) *Simulator {
	return &Simulator{owner: owner, delay: delay}
}

// FailWrites makes subsequent writes fail with err. Pass nil to heal.
func (s *Simulator) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// FailConfirmations makes subsequent confirmation waits fail with err.
func (s *Simulator) FailConfirmations(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmErr = err
}

func (s *Simulator) GetAllocations(ctx context.Context) ([]string, []uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := append([]string(nil), s.categories...)
	percentages := append([]uint64(nil), s.percentages...)
	return categories, percentages, nil
}

func (s *Simulator) Owner(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner, nil
}

func (s *Simulator) UpdateAllocations(ctx context.Context, categories []string, percentages []uint64) (string, error) {
	if err := s.sleep(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return "", s.writeErr
	}
	if len(categories) != len(percentages) {
		return "", fmt.Errorf("categories/percentages length mismatch: %d vs %d", len(categories), len(percentages))
	}

	s.categories = append([]string(nil), categories...)
	s.percentages = append([]uint64(nil), percentages...)
	return randomHash(), nil
}

func (s *Simulator) WaitConfirmed(ctx context.Context, txHash string) error {
	if !strings.HasPrefix(txHash, "0x") {
		return fmt.Errorf("unknown transaction %s", txHash)
	}

	s.mu.Lock()
	err := s.confirmErr
	s.mu.Unlock()
	return err
}

func (s *Simulator) sleep(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomHash() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return "0x" + hex.EncodeToString(buf)
}
