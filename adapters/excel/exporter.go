package excel

import (
	"strconv"

	"lcgwalk/domain/sequence"
	"lcgwalk/internal/errors"
	"lcgwalk/internal/walk"

	"github.com/xuri/excelize/v2"
)

const (
	SamplesSheet = "Samples"
	SummarySheet = "Summary"
)

// WriteSession exports an accepted session to an xlsx workbook. The Samples
// sheet lists index, value and mapped direction; Summary holds the test
// outcomes.
func WriteSession(path string, s *sequence.Session, mapper walk.Mapper) error {
	seq, ok := s.Sequence()
	if !ok {
		return errors.WithCode(errors.CodeValidationError, s.Err())
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SamplesSheet); err != nil {
		return errors.IOError("failed to prepare workbook", err)
	}

	// Header row
	for i, h := range []string{"index", "value", "direction"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SamplesSheet, cell, h); err != nil {
			return errors.IOError("failed to write header", err)
		}
	}

	// Data rows
	for i := 0; i < seq.Len(); i++ {
		v := seq.At(i)
		row := []interface{}{i + 1, v, mapper.Map(v).String()}
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			if err := f.SetCellValue(SamplesSheet, cell, val); err != nil {
				return errors.IOError("failed to write sample", err)
			}
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return errors.IOError("failed to add summary sheet", err)
	}
	summary := [][]interface{}{
		{"session", s.ID.String()},
		{"generator", s.Config.String()},
		{"attempt", s.Attempt},
		{"trial_seed", s.TrialSeed},
		{"alpha", s.Alpha},
	}
	for _, o := range []*sequence.ValidationOutcome{s.Mean, s.Variance} {
		if o != nil {
			summary = append(summary, []interface{}{string(o.Test), o.Statistic, o.Lower, o.Upper, string(o.Verdict)})
		}
	}
	for r, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return errors.IOError("failed to write summary", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError("failed to save workbook "+path, err)
	}
	return nil
}

// ReadSamples loads the value column of a workbook written by WriteSession.
func ReadSamples(path string) (sequence.SampleSequence, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return sequence.SampleSequence{}, errors.IOError("failed to open workbook "+path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SamplesSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return sequence.SampleSequence{}, errors.IOError("failed to read samples", err)
	}

	values := make([]float64, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return sequence.SampleSequence{}, errors.InvalidInput("row " + strconv.Itoa(i+1) + ": " + err.Error())
		}
		values = append(values, v)
	}
	return sequence.NewSampleSequence(values), nil
}
