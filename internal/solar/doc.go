// Package solar models the sun's load on vertical facades.
//
// It computes refraction-corrected sun positions from an ephemeris,
// derives the angle of attack on a facade from its compass orientation,
// and folds incidence, solar elevation and atmospheric attenuation into
// a relative heat gain score in [0, 100]. Daily profiles and hitting
// windows support the status API.
package solar
