package charts

// DefaultSpecs is the dashboard chart set and the dataset each chart reads.
// Exploration charts use the clean dataset; the distribution checks that follow
// outlier removal use the filtered one.
func DefaultSpecs(bins int) []Spec {
	if bins <= 0 {
		bins = 30
	}
	return []Spec{
		{ID: "mass-hist", Title: "Distribución de la masa (m kg)", Kind: Histogram, Source: SourceClean,
			X: "m (kg)", XLabel: "Masa (kg)", YLabel: "Frecuencia", Bins: bins},
		{ID: "fuel-counts", Title: "Distribución por tipo de combustible", Kind: Bar, Source: SourceClean,
			X: "Ft", Aggregate: AggCount, YLabel: "Vehículos"},
		{ID: "mass-vs-co2", Title: "Relación entre masa del vehículo y emisiones de CO2", Kind: Scatter, Source: SourceClean,
			X: "m (kg)", Y: "Enedc (g/km)", XLabel: "Masa (kg)", YLabel: "Emisiones de CO2 (g/km)"},
		{ID: "co2-by-make", Title: "Emisiones promedio por fabricante", Kind: Bar, Source: SourceClean,
			X: "Man", Y: "Enedc (g/km)", Aggregate: AggMean, PositiveOnly: true, YLabel: "Enedc (g/km)"},
		{ID: "corr", Title: "Matriz de correlación", Kind: Heatmap, Source: SourceClean},
		{ID: "co2-hist-filtered", Title: "Distribución de emisiones sin outliers", Kind: Histogram, Source: SourceFiltered,
			X: "Enedc (g/km)", XLabel: "Emisiones de CO2 (g/km)", YLabel: "Frecuencia", Bins: bins},
		{ID: "engine-box", Title: "Cilindrada sin outliers", Kind: Boxplot, Source: SourceFiltered,
			Columns: []string{"ec (cm3)"}, YLabel: "cm3"},
		{ID: "dimensions-box", Title: "Dimensiones sin outliers", Kind: Boxplot, Source: SourceFiltered,
			Columns: []string{"W (mm)", "At1 (mm)", "At2 (mm)"}, YLabel: "mm"},
		{ID: "co2-by-category", Title: "Emisiones promedio por categoría (Ct)", Kind: Bar, Source: SourceFiltered,
			X: "Ct", Y: "Enedc (g/km)", Aggregate: AggMean, YLabel: "Enedc (g/km)"},
		{ID: "co2-by-fuel-mode", Title: "Emisiones promedio por modo de combustible (Fm)", Kind: Bar, Source: SourceFiltered,
			X: "Fm", Y: "Enedc (g/km)", Aggregate: AggMean, YLabel: "Enedc (g/km)"},
	}
}
