package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/reconcile"
)

const exportSheet = "Reconciliation"

var exportHeader = []string{
	"Patient Name", "Member ID", "Total Insurance", "Total Paid", "Balance",
	"Status", "Insurance Payments", "Venmo Payments",
}

func exportRow(r reconcile.Record) []string {
	return []string{
		r.PatientName,
		r.MemberSubscriberID,
		r.TotalInsurance.StringFixed(2),
		r.TotalPaid.StringFixed(2),
		r.Balance.StringFixed(2),
		string(r.Status),
		fmt.Sprint(r.InsuranceCount),
		fmt.Sprint(r.VenmoCount),
	}
}

// Export renders the reconciliation report as a csv or xlsx file.
func (s *reconciliationService) Export(ctx context.Context, uid, format string) (dto.ExportFile, error) {
	if format == "" {
		format = dto.ExportCSV
	}
	if format != dto.ExportCSV && format != dto.ExportXLSX {
		return dto.ExportFile{}, errs.NewValidationError(`format must be "csv" or "xlsx"`)
	}

	res, err := s.Summary(ctx, uid)
	if err != nil {
		return dto.ExportFile{}, err
	}

	name := "reconciliation-" + time.Now().Format("2006-01-02")
	switch format {
	case dto.ExportXLSX:
		data, err := renderXLSX(res)
		if err != nil {
			return dto.ExportFile{}, err
		}
		return dto.ExportFile{
			Filename:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		data, err := renderCSV(res)
		if err != nil {
			return dto.ExportFile{}, err
		}
		return dto.ExportFile{Filename: name + ".csv", ContentType: "text/csv", Data: data}, nil
	}
}

func renderCSV(res dto.ReconciliationResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range res.Records {
		if err := w.Write(exportRow(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderXLSX(res dto.ReconciliationResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i, r := range res.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			r.PatientName,
			r.MemberSubscriberID,
			r.TotalInsurance.InexactFloat64(),
			r.TotalPaid.InexactFloat64(),
			r.Balance.InexactFloat64(),
			string(r.Status),
			r.InsuranceCount,
			r.VenmoCount,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}
	if len(res.Records) > 0 {
		last := fmt.Sprintf("E%d", len(res.Records)+1)
		if err := f.SetCellStyle(exportSheet, "C2", last, style); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
