package report

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/motion.review/internal/chart"
	"github.com/banshee-data/motion.review/internal/db"
	"github.com/banshee-data/motion.review/internal/imu"
	"github.com/banshee-data/motion.review/internal/session"
)

// Archive member names. project.json and data.csv are required on import;
// everything else is informational.
const (
	archiveProjectFile = "project.json"
	archiveDataFile    = "data.csv"
	archiveReportFile  = "report.txt"
)

// ExportArchive writes a portable zip of the session: the project record,
// the raw sample data, the text report, and one plot per sensor group.
func ExportArchive(w io.Writer, sess *session.Session, rec *db.ProjectRecord) error {
	zw := zip.NewWriter(w)

	pf, err := zw.Create(archiveProjectFile)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(pf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode project record: %w", err)
	}

	if sess.Series != nil {
		df, err := zw.Create(archiveDataFile)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(df, sess.Series.CSV()); err != nil {
			return fmt.Errorf("failed to write sample data: %w", err)
		}

		for _, group := range chart.Groups {
			gf, err := zw.Create("plots/" + group.Name + ".png")
			if err != nil {
				return err
			}
			if err := WriteGroupPNG(gf, sess.Series, group); err != nil {
				return fmt.Errorf("failed to plot %s: %w", group.Name, err)
			}
		}
	}

	rf, err := zw.Create(archiveReportFile)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(rf, Build(sess)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return zw.Close()
}

// ImportArchive reads a zip produced by ExportArchive. The sample series is
// nil when the archive carries no data file.
func ImportArchive(r io.ReaderAt, size int64) (*db.ProjectRecord, *imu.Series, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("not a valid archive: %w", err)
	}

	var rec *db.ProjectRecord
	var rawData []byte

	for _, f := range zr.File {
		switch f.Name {
		case archiveProjectFile:
			rc, err := f.Open()
			if err != nil {
				return nil, nil, err
			}
			rec = &db.ProjectRecord{}
			err = json.NewDecoder(rc).Decode(rec)
			rc.Close()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to decode project record: %w", err)
			}

		case archiveDataFile:
			rc, err := f.Open()
			if err != nil {
				return nil, nil, err
			}
			rawData, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, nil, err
			}
		}
	}

	if rec == nil {
		return nil, nil, fmt.Errorf("archive is missing %s", archiveProjectFile)
	}

	// The sample rate lives in project.json, so data parsing waits until
	// both members have been seen.
	var series *imu.Series
	if len(rawData) > 0 {
		rate := rec.SampleRate
		if rate <= 0 {
			rate = imu.DefaultSampleRateHz
		}
		series, err = imu.ParseCSV(string(rawData), rate)
		if err != nil {
			return nil, nil, fmt.Errorf("archive data file is invalid: %w", err)
		}
	}

	return rec, series, nil
}
