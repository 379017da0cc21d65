// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math32

// Matrix4 is a 4x4 matrix in row-major order, used to compose the
// translate/rotate/scale transform applied to a Visual by a LayerEffect
// transform command: T * Rz * Ry * Rx * S.
type Matrix4 [16]float32

// Identity4 returns the 4x4 identity matrix.
func Identity4() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func Translate3D(t Vector3) Matrix4 {
	m := Identity4()
	m[3], m[7], m[11] = t.X, t.Y, t.Z
	return m
}

func Scale3D(s Vector3) Matrix4 {
	m := Identity4()
	m[0], m[5], m[10] = s.X, s.Y, s.Z
	return m
}

func RotateX3D(rad float32) Matrix4 {
	c, s := Cos(rad), Sin(rad)
	m := Identity4()
	m[5], m[6] = c, -s
	m[9], m[10] = s, c
	return m
}

func RotateY3D(rad float32) Matrix4 {
	c, s := Cos(rad), Sin(rad)
	m := Identity4()
	m[0], m[2] = c, s
	m[8], m[10] = -s, c
	return m
}

func RotateZ3D(rad float32) Matrix4 {
	c, s := Cos(rad), Sin(rad)
	m := Identity4()
	m[0], m[1] = c, -s
	m[4], m[5] = s, c
	return m
}

// Mul returns a*b for 4x4 row-major matrices.
func (a Matrix4) Mul(b Matrix4) Matrix4 {
	var r Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[row*4+k] * b[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

// ComposeTRS builds T * Rz * Ry * Rx * S, the spec's required
// composition order for applying a TransformationParams to a Visual.
func ComposeTRS(translate, rotate, scale Vector3) Matrix4 {
	t := Translate3D(translate)
	rz := RotateZ3D(rotate.Z)
	ry := RotateY3D(rotate.Y)
	rx := RotateX3D(rotate.X)
	s := Scale3D(scale)
	return t.Mul(rz).Mul(ry).Mul(rx).Mul(s)
}
