// Package sla maps measured throughput to compliance against a contracted
// baseline. Evaluation is pure: no error conditions, always a value.
package sla

import "math"

// DefaultThresholdPct is the fraction of contracted speed, in percent, that
// both axes must reach for a cycle to count as compliant.
const DefaultThresholdPct = 80.0

// Contract holds the contracted throughput baseline for one site.
type Contract struct {
	DownloadMbps float64
	UploadMbps   float64
	ThresholdPct float64
}

// Result of one evaluation. DeviationPct is signed: negative values indicate
// underperformance, and the worse of the two axes dominates.
type Result struct {
	DownloadPct  float64
	UploadPct    float64
	Compliant    bool
	DeviationPct float64
}

// Evaluate compares measured throughput to the contract. A non-positive
// contracted speed yields 0% on that axis rather than dividing by zero.
func Evaluate(downloadMbps, uploadMbps float64, c Contract) Result {
	threshold := c.ThresholdPct
	if threshold <= 0 {
		threshold = DefaultThresholdPct
	}

	var downloadPct, uploadPct float64
	if c.DownloadMbps > 0 {
		downloadPct = downloadMbps / c.DownloadMbps * 100
	}
	if c.UploadMbps > 0 {
		uploadPct = uploadMbps / c.UploadMbps * 100
	}

	return Result{
		DownloadPct:  downloadPct,
		UploadPct:    uploadPct,
		Compliant:    downloadPct >= threshold && uploadPct >= threshold,
		DeviationPct: math.Min(downloadPct, uploadPct) - 100,
	}
}
