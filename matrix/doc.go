// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides the dense float64 matrix used by the feedforward
// engine.
//
// # Overview
//
// A Matrix is a rows×cols grid stored row-major. Arithmetic returns new
// matrices and never aliases its operands:
//   - Element-wise: Add, Sub, MulElem
//   - Products: MatMul, Transpose
//   - Reductions and broadcast: SumRows, AddRowVector
//   - Row transforms: ApplyRows
//
// Shape errors are returned, never panicked:
//
//	a, _ := matrix.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
//	b, _ := matrix.FromRows([][]float64{{7, 8}, {9, 10}, {11, 12}})
//	c, err := a.MatMul(b) // [[58 64] [139 154]]
//
//	_, err = a.Add(b)
//	errors.Is(err, matrix.ErrShapeMismatch) // true
//
// # Persistence
//
// WriteTo and ReadFrom stream the raw elements as little-endian float64,
// row-major, with no header.
package matrix
