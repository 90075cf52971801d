// Package rate implements per-endpoint-tier admission control for the
// accessgate request gate.
//
// Counting is fixed-window with lazy reset: a bucket's counter resets only
// when first touched after its window elapses. Bursts of up to twice the
// limit can occur across a window boundary; that is the documented contract,
// not a defect. The gate consults this package before paying any token
// verification cost.
package rate
