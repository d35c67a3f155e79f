// Package testutil holds fixtures shared by package tests: small datasets,
// a discarding logger, deterministic figure ids and a fake annotation
// service.
package testutil

import (
	"io"
	"log/slog"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GWASFrame returns six association results on GRCh38 coordinates.
// Row 3 has no p-value.
func GWASFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"rs1", "rs2", "rs3", "rs4", "rs5", "rs6"}, series.String, "id"),
		series.New([]string{"1", "chr1", "2", "2", "X", "MT"}, series.String, "contig"),
		series.New([]int{752566, 1005806, 21563, 48910, 2781479, 152}, series.Int, "position"),
		series.New([]string{"3e-9", "0.21", "4e-4", "NaN", "1e-6", "0.5"}, series.Float, "pvalue"),
		series.New([]string{"FAM87B", "", "FAM110C", "", "SRY", "MT-RNR1"}, series.String, "gene"),
	)
}

// PCAFrame returns six samples with three principal components, a
// population label and an age.
func PCAFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"s1", "s2", "s3", "s4", "s5", "s6"}, series.String, "sample"),
		series.New([]string{"EUR", "AFR", "EUR", "EAS", "AFR", "SAS"}, series.String, "population"),
		series.New([]float64{0.12, -0.31, 0.08, 0.22, -0.27, 0.02}, series.Float, "PC1"),
		series.New([]float64{0.05, 0.11, 0.07, -0.19, 0.14, -0.02}, series.Float, "PC2"),
		series.New([]float64{-0.01, 0.03, 0.02, 0.06, -0.04, 0.09}, series.Float, "PC3"),
		series.New([]int{34, 51, 29, 62, 45, 38}, series.Int, "age"),
	)
}
