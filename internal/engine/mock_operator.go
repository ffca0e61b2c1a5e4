package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
)

// MockOperator is a scripted Operator for tests. It answers from preset maps
// and records every call.
type MockOperator struct {
	ThresholdErr     error
	PriceErr         error
	AssignErr        error
	ThresholdValues  map[string]float64
	PriceValues      map[string]float64
	SkipProducts     map[string]bool
	thresholdCalls   [][]string
	priceCalls       [][]model.PriceRequest
	assignResults    []AssignResult
	Assignments      []MockAssignment
	DefaultThreshold float64
	mu               sync.Mutex
	HasDefault       bool
	AcceptAuto       bool
}

// MockAssignment is one scripted manual assignment. A nil Indices selects
// every pending campaign.
type MockAssignment struct {
	Product string
	Indices []int
}

// NewMockOperator creates a mock operator that applies one threshold to every product.
func NewMockOperator(threshold float64) *MockOperator {
	return &MockOperator{
		ThresholdValues:  make(map[string]float64),
		PriceValues:      make(map[string]float64),
		SkipProducts:     make(map[string]bool),
		DefaultThreshold: threshold,
		HasDefault:       true,
		AcceptAuto:       true,
	}
}

// WithPrice sets a manual price for a product.
func (m *MockOperator) WithPrice(product string, price float64) *MockOperator {
	m.PriceValues[product] = price
	return m
}

// WithThreshold overrides the threshold of one product.
func (m *MockOperator) WithThreshold(product string, threshold float64) *MockOperator {
	m.ThresholdValues[product] = threshold
	return m
}

// WithSkip marks a product's price as skipped.
func (m *MockOperator) WithSkip(product string) *MockOperator {
	m.SkipProducts[product] = true
	return m
}

// WithAssignment scripts a manual assignment.
func (m *MockOperator) WithAssignment(product string, indices ...int) *MockOperator {
	m.Assignments = append(m.Assignments, MockAssignment{Product: product, Indices: indices})
	return m
}

// Thresholds implements Operator.
func (m *MockOperator) Thresholds(_ context.Context, products []string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.thresholdCalls = append(m.thresholdCalls, products)
	if m.ThresholdErr != nil {
		return nil, m.ThresholdErr
	}

	out := make(map[string]float64, len(products))
	for _, p := range products {
		if t, ok := m.ThresholdValues[p]; ok {
			out[p] = t
		} else if m.HasDefault {
			out[p] = m.DefaultThreshold
		}
	}
	return out, nil
}

// Prices implements Operator.
func (m *MockOperator) Prices(_ context.Context, requests []model.PriceRequest) ([]model.PriceEstimate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.priceCalls = append(m.priceCalls, requests)
	if m.PriceErr != nil {
		return nil, m.PriceErr
	}

	var out []model.PriceEstimate
	for _, r := range requests {
		switch price, manual := m.PriceValues[r.Product]; {
		case m.SkipProducts[r.Product]:
			out = append(out, model.PriceEstimate{Product: r.Product, Source: model.PriceSkipped})
		case manual:
			out = append(out, model.PriceEstimate{Product: r.Product, Source: model.PriceManual, Price: price})
		case r.HasAuto && m.AcceptAuto:
			out = append(out, model.PriceEstimate{Product: r.Product, Source: model.PriceAuto, Price: r.Suggested})
		default:
			out = append(out, model.PriceEstimate{Product: r.Product, Source: model.PriceSkipped})
		}
	}
	return out, nil
}

// ResolveUnassigned implements Operator by replaying the scripted assignments.
func (m *MockOperator) ResolveUnassigned(_ context.Context, session AssignmentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AssignErr != nil {
		return m.AssignErr
	}
	for _, a := range m.Assignments {
		indices := a.Indices
		if indices == nil {
			for i := range session.Pending() {
				indices = append(indices, i)
			}
		}
		result, err := session.Assign(a.Product, indices)
		if err != nil {
			return err
		}
		m.assignResults = append(m.assignResults, result)
	}
	return nil
}

// ThresholdCalls returns the product lists the operator was asked about.
func (m *MockOperator) ThresholdCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thresholdCalls
}

// PriceCalls returns the price requests the operator received.
func (m *MockOperator) PriceCalls() [][]model.PriceRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priceCalls
}

// AssignResults returns the results of the scripted assignments.
func (m *MockOperator) AssignResults() []AssignResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignResults
}
