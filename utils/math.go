package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

func Vec3Min(a, b mgl32.Vec3) mgl32.Vec3 {
	for i := range a {
		if b[i] < a[i] {
			a[i] = b[i]
		}
	}
	return a
}

func Vec3Max(a, b mgl32.Vec3) mgl32.Vec3 {
	for i := range a {
		if b[i] > a[i] {
			a[i] = b[i]
		}
	}
	return a
}

func FloatArray32to64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
