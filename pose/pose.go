package pose

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"math"
)

// Matrix is a row-major 3x4 device-to-absolute tracking transform.
// Columns 0..2 hold the rotation, column 3 the translation in meters.
type Matrix [3][4]float64

// Identity returns a pose at the tracking origin with no rotation.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
}

// Compose builds a pose from a position and Euler angles.
func Compose(position r3.Vec, euler Euler) Matrix {
	var r = euler.Rotation()
	var m Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = r.At(i, j)
		}
	}
	m[0][3] = position.X
	m[1][3] = position.Y
	m[2][3] = position.Z
	return m
}

// Homogeneous returns the 4x4 form with a 0 0 0 1 bottom row.
func (m Matrix) Homogeneous() *mat.Dense {
	var data = make([]float64, 0, 16)
	for i := 0; i < 3; i++ {
		data = append(data, m[i][:]...)
	}
	data = append(data, 0, 0, 0, 1)
	return mat.NewDense(4, 4, data)
}

func (m Matrix) Position() r3.Vec {
	return r3.Vec{X: m[0][3], Y: m[1][3], Z: m[2][3]}
}

// Euler extracts roll, pitch and yaw in degrees. Gimbal lock is not handled.
func (m Matrix) Euler() Euler {
	var pitch = math.Atan2(-m[2][0], math.Sqrt(m[0][0]*m[0][0]+m[1][0]*m[1][0]))
	var yaw = math.Atan2(m[1][0], m[0][0])
	var roll = math.Atan2(m[2][1], m[2][2])
	return Euler{
		Roll:  degrees(roll),
		Pitch: degrees(pitch),
		Yaw:   degrees(yaw),
	}
}

// Euler angles in degrees.
type Euler struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// Rotation returns Rz(yaw) * Ry(pitch) * Rx(roll).
func (e Euler) Rotation() *mat.Dense {
	var roll, pitch, yaw = radians(e.Roll), radians(e.Pitch), radians(e.Yaw)

	var rx = mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, math.Cos(roll), -math.Sin(roll),
		0, math.Sin(roll), math.Cos(roll),
	})
	var ry = mat.NewDense(3, 3, []float64{
		math.Cos(pitch), 0, math.Sin(pitch),
		0, 1, 0,
		-math.Sin(pitch), 0, math.Cos(pitch),
	})
	var rz = mat.NewDense(3, 3, []float64{
		math.Cos(yaw), -math.Sin(yaw), 0,
		math.Sin(yaw), math.Cos(yaw), 0,
		0, 0, 1,
	})

	var yx mat.Dense
	yx.Mul(ry, rx)
	var r = new(mat.Dense)
	r.Mul(rz, &yx)
	return r
}

// Rotate applies the rotation to v.
func (e Euler) Rotate(v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(e.Rotation(), mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// Frame returns the tips of the rotated x, y and z axes of length scale
// anchored at position.
func Frame(position r3.Vec, e Euler, scale float64) [3]r3.Vec {
	return [3]r3.Vec{
		r3.Add(position, e.Rotate(r3.Vec{X: scale})),
		r3.Add(position, e.Rotate(r3.Vec{Y: scale})),
		r3.Add(position, e.Rotate(r3.Vec{Z: scale})),
	}
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
