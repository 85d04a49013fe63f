// Package analysis derives financial ratios and time-series projections
// from raw OpenDART statement line items.
package analysis
