//go:build !js

package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
)

type profileParquetRow struct {
	DistanceM  float64 `parquet:"name=distance_m, type=DOUBLE"`
	ElevationM float64 `parquet:"name=elevation_m, type=DOUBLE"`
	GradePct   float64 `parquet:"name=grade_pct, type=DOUBLE"`
}

func marshalProfileParquet(points []elevation.ProfilePoint) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(profileParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, p := range points {
		row := profileParquetRow{
			DistanceM:  p.DistanceM,
			ElevationM: p.ElevationM,
			GradePct:   p.GradePct,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
