package mathz

import "math"

func InQuad(p float64) float64 { return p * p }

func InCubic(p float64) float64 { return p * p * p }

func InQuart(p float64) float64 { return p * p * p * p }

func InSine(p float64) float64 { return -math.Cos(p*math.Pi*0.5) + 1 }

func OutQuad(p float64) float64 {
	p = 1 - p
	return 1 - InQuad(p)
}

func OutCubic(p float64) float64 {
	p = 1 - p
	return 1 - InCubic(p)
}

func OutQuart(p float64) float64 {
	p = 1 - p
	return 1 - InQuart(p)
}

func InOutQuad(p float64) float64 {
	p *= 2
	if p < 1 {
		return 0.5 * InQuad(p)
	}
	p = 2 - p
	return 0.5*(1-InQuad(p)) + 0.5
}
