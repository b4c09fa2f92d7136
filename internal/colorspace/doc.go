// Package colorspace converts between hex, sRGB, CIE XYZ and CIE L*a*b* and
// measures perceptual distance between Lab values.
//
// All functions are pure and safe for concurrent use.
//
// # Conversion Chain
//
// Colors travel through the following steps before they are compared:
//
//  1. Hex "#RRGGBB" -> 8-bit RGB
//  2. sRGB -> linear RGB (gamma 2.4, threshold 0.04045)
//  3. linear RGB -> CIE XYZ scaled to 0-100
//  4. XYZ -> Lab against the D65 reference white (95.047, 100, 108.883)
//
// Semi-transparent samples are composited over an opaque background with
// BlendWithBackground before they enter the chain.
//
// # Distance
//
// DeltaE is the CIE76 Euclidean distance. Metric exposes CIE94 and CIEDE2000
// as opt-in alternatives; switching metric changes nearest-color results.
package colorspace
