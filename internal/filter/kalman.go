// Package filter estimates the true track of a sample stream with a linear
// Kalman filter.
//
// The default model is a constant-velocity point in the plane with state
// [x, y, vx, vy] observed through its position. Gravity and bounces are not
// modeled; the process noise absorbs them.
package filter

import (
	"fmt"

	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/storage/types"
	"gonum.org/v1/gonum/mat"
)

// Model holds the matrices of a linear Gaussian state-space model.
type Model struct {
	F  *mat.Dense    // state transition
	H  *mat.Dense    // observation
	Q  *mat.Dense    // process noise covariance
	R  *mat.Dense    // measurement noise covariance
	X0 *mat.VecDense // initial state mean
	P0 *mat.Dense    // initial state covariance
}

// ModelParams parameterizes ConstantVelocity.
type ModelParams struct {
	Dt float64

	// Initial position and velocity guess.
	X0, Y0, VX0, VY0 float64

	// Diagonal variances.
	ProcessNoise     float64
	MeasurementNoise float64
	InitialVariance  float64
}

// DefaultModelParams matches the reference ballistic scene sampled at 60 Hz.
func DefaultModelParams() ModelParams {
	return ModelParams{
		Dt:               1.0 / 60.0,
		X0:               0,
		Y0:               1,
		VX0:              10,
		VY0:              100,
		ProcessNoise:     10,
		MeasurementNoise: 1e4,
		InitialVariance:  10,
	}
}

// ConstantVelocity builds the 4-state planar model.
func ConstantVelocity(p ModelParams) Model {
	dt := p.Dt
	return Model{
		F: mat.NewDense(4, 4, []float64{
			1, 0, dt, 0,
			0, 1, 0, dt,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}),
		H: mat.NewDense(2, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
		}),
		Q:  diag(4, p.ProcessNoise),
		R:  diag(2, p.MeasurementNoise),
		X0: mat.NewVecDense(4, []float64{p.X0, p.Y0, p.VX0, p.VY0}),
		P0: diag(4, p.InitialVariance),
	}
}

// Validate checks that the matrix dimensions agree.
func (m Model) Validate() error {
	if m.F == nil || m.H == nil || m.Q == nil || m.R == nil || m.X0 == nil || m.P0 == nil {
		return fmt.Errorf("incomplete model: %w", errors.ErrInvalidConfig)
	}
	n := m.X0.Len()
	check := func(name string, d mat.Matrix, r, c int) error {
		if rr, cc := d.Dims(); rr != r || cc != c {
			return fmt.Errorf("%s is %dx%d, want %dx%d: %w", name, rr, cc, r, c, errors.ErrShapeMismatch)
		}
		return nil
	}
	k, _ := m.H.Dims()
	for _, c := range []struct {
		name string
		d    mat.Matrix
		r, c int
	}{
		{"F", m.F, n, n},
		{"H", m.H, k, n},
		{"Q", m.Q, n, n},
		{"R", m.R, k, k},
		{"P0", m.P0, n, n},
	} {
		if err := check(c.name, c.d, c.r, c.c); err != nil {
			return err
		}
	}
	return nil
}

// Kalman is a running filter. It is not safe for concurrent use.
type Kalman struct {
	model Model
	x     *mat.VecDense
	p     *mat.Dense
	eye   *mat.Dense
	steps int
}

// New starts a filter at the model's initial state.
func New(m Model) (*Kalman, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	n := m.X0.Len()
	return &Kalman{
		model: m,
		x:     mat.VecDenseCopyOf(m.X0),
		p:     mat.DenseCopyOf(m.P0),
		eye:   diag(n, 1),
	}, nil
}

// Predict advances the state one step: x = Fx, P = FPFᵀ + Q.
func (k *Kalman) Predict() {
	var x mat.VecDense
	x.MulVec(k.model.F, k.x)

	var fp, p mat.Dense
	fp.Mul(k.model.F, k.p)
	p.Mul(&fp, k.model.F.T())
	p.Add(&p, k.model.Q)

	k.x = &x
	k.p = &p
}

// Update folds the measurement z into the predicted state.
func (k *Kalman) Update(z []float64) error {
	obs, _ := k.model.H.Dims()
	if len(z) != obs {
		return fmt.Errorf("measurement has %d values, want %d: %w", len(z), obs, errors.ErrShapeMismatch)
	}
	h := k.model.H

	// Innovation y = z - Hx
	var hx, y mat.VecDense
	hx.MulVec(h, k.x)
	y.SubVec(mat.NewVecDense(obs, append([]float64(nil), z...)), &hx)

	// S = HPHᵀ + R
	var hp, s, sInv mat.Dense
	hp.Mul(h, k.p)
	s.Mul(&hp, h.T())
	s.Add(&s, k.model.R)
	if err := sInv.Inverse(&s); err != nil {
		return fmt.Errorf("innovation covariance: %w", err)
	}

	// K = PHᵀS⁻¹
	var pht, gain mat.Dense
	pht.Mul(k.p, h.T())
	gain.Mul(&pht, &sInv)

	var dx, x mat.VecDense
	dx.MulVec(&gain, &y)
	x.AddVec(k.x, &dx)

	// P = (I - KH)P
	var kh, ikh, p mat.Dense
	kh.Mul(&gain, h)
	ikh.Sub(k.eye, &kh)
	p.Mul(&ikh, k.p)

	k.x = &x
	k.p = &p
	k.steps++
	return nil
}

// Step runs Predict then Update and returns the estimated position.
func (k *Kalman) Step(z []float64) ([]float64, error) {
	k.Predict()
	if err := k.Update(z); err != nil {
		return nil, err
	}
	return k.Position(), nil
}

// Position returns the observed part of the state, Hx.
func (k *Kalman) Position() []float64 {
	var hx mat.VecDense
	hx.MulVec(k.model.H, k.x)
	return append([]float64(nil), hx.RawVector().Data...)
}

// State returns a copy of the full state mean.
func (k *Kalman) State() []float64 {
	return append([]float64(nil), k.x.RawVector().Data...)
}

// Variance returns the diagonal of the state covariance.
func (k *Kalman) Variance() []float64 {
	n, _ := k.p.Dims()
	out := make([]float64, n)
	for i := range out {
		out[i] = k.p.At(i, i)
	}
	return out
}

// Steps returns the number of measurements folded in.
func (k *Kalman) Steps() int {
	return k.steps
}

// Track filters every column of m in order and returns the estimated
// positions with the same shape.
func Track(model Model, m *types.Matrix) (*types.Matrix, error) {
	k, err := New(model)
	if err != nil {
		return nil, err
	}
	obs, _ := model.H.Dims()
	if m.Dim != obs {
		return nil, fmt.Errorf("matrix has %d rows, model observes %d: %w", m.Dim, obs, errors.ErrShapeMismatch)
	}

	rows := make([][]float64, m.Dim)
	for r := range rows {
		rows[r] = make([]float64, m.Steps)
	}
	for col := 0; col < m.Steps; col++ {
		est, err := k.Step(m.Column(col))
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", col, err)
		}
		for r, v := range est {
			rows[r][col] = v
		}
	}
	return types.NewMatrix(rows)
}

func diag(n int, v float64) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, v)
	}
	return d
}
