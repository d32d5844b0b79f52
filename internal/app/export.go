package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"sensor-anomaly-alerts/internal/recommend"
	"sensor-anomaly-alerts/internal/storage"
)

// Export renders a sensor's measurement history as CSV and/or PNG. The PNG
// plots the readings against the room profile's acceptable band so range
// excursions are visible at a glance.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	sensor, err := a.findSensor(opts.SensorName)
	if err != nil {
		return err
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Scheduler.Interval)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	measurements, err := store.ListMeasurementsBetween(ctx, sensor.Name, from, to)
	if err != nil {
		return err
	}
	if len(measurements) == 0 {
		a.Logger.Info().Str("sensor", sensor.Name).Msg("no measurements found for export window")
		return nil
	}

	downsampled := downsampleMeasurements(measurements, opts.MaxPoints)
	a.Logger.Info().Int("total", len(measurements)).Int("exported", len(downsampled)).
		Str("sensor", sensor.Name).Msg("exporting measurements")

	if opts.CSVPath != "" {
		if err := writeMeasurementsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		profiles, err := a.Config.RoomProfiles()
		if err != nil {
			return err
		}
		kind := recommend.ParseSensorKind(sensor.Type)
		profile := profiles.Lookup(sensor.Room)
		if err := writeMeasurementsPNG(opts.PNGPath, downsampled, kind, profile); err != nil {
			return err
		}
	}

	return nil
}

func downsampleMeasurements(measurements []storage.Measurement, max int) []storage.Measurement {
	if max <= 0 || len(measurements) <= max {
		return measurements
	}

	result := make([]storage.Measurement, 0, max)
	step := float64(len(measurements)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(measurements) {
			idx = len(measurements) - 1
		}
		result = append(result, measurements[idx])
	}
	return result
}

func writeMeasurementsCSV(path string, measurements []storage.Measurement) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"recorded_at", "sensor_name", "sensor_kind", "room_type", "value"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, m := range measurements {
		record := []string{
			m.RecordedAt.Format(time.RFC3339),
			m.SensorName,
			m.SensorKind,
			m.RoomType,
			m.Value.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeMeasurementsPNG(path string, measurements []storage.Measurement, kind recommend.SensorKind, profile recommend.Profile) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	band := profile.Temperature
	target := profile.TemperatureTarget
	axisName := "Temperature (°C)"
	if kind == recommend.KindHumidity {
		band = profile.Humidity
		target = profile.HumidityTarget
		axisName = "Humidity (%)"
	}

	x := make([]time.Time, len(measurements))
	values := make([]float64, len(measurements))
	lower := make([]float64, len(measurements))
	upper := make([]float64, len(measurements))
	deviation := make([]float64, len(measurements))

	for i, m := range measurements {
		v := m.Value.InexactFloat64()
		x[i] = m.RecordedAt
		values[i] = v
		lower[i] = band.Min
		upper[i] = band.Max
		deviation[i] = v - target
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           axisName,
			ValueFormatter: valueFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Deviation from target",
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Reading",
				XValues: x,
				YValues: values,
			},
			chart.TimeSeries{
				Name:    "Range min",
				XValues: x,
				YValues: lower,
			},
			chart.TimeSeries{
				Name:    "Range max",
				XValues: x,
				YValues: upper,
			},
			chart.TimeSeries{
				Name:    "Deviation",
				XValues: x,
				YValues: deviation,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
