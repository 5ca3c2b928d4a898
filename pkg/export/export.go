// Package export flattens a day schedule into rows and writes them as
// JSON, CSV, or XLSX for the front office.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/mpelletier/rosterd/core/model"
)

// Row is one line of the flattened day schedule.
type Row struct {
	Date        string `json:"date"`
	Session     string `json:"session"`
	Program     string `json:"program"`
	StaffID     string `json:"staff_id"`
	StaffName   string `json:"staff_name"`
	Role        string `json:"role"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Ratio       string `json:"ratio"`
	Strategy    string `json:"strategy"`
	Locked      bool   `json:"locked"`
}

var csvHeader = []string{
	"date", "session", "program",
	"staff_id", "staff_name", "role",
	"student_id", "student_name", "ratio",
	"strategy", "locked",
}

// BuildRows flattens the schedule into rows ordered the way the front
// office reads a board: program, then session, then student name.
func BuildRows(sched *model.Schedule, staff []model.Staff, students []model.Student) []Row {
	staffByID := make(map[string]model.Staff, len(staff))
	for _, s := range staff {
		staffByID[s.ID] = s
	}
	studentsByID := make(map[string]model.Student, len(students))
	for _, st := range students {
		studentsByID[st.ID] = st
	}

	assignments := sched.All()
	rows := make([]Row, 0, len(assignments))
	for _, a := range assignments {
		r := Row{
			Date:      a.Date.Format("2006-01-02"),
			Session:   a.Session.String(),
			Program:   a.Program.String(),
			StaffID:   a.StaffID,
			StudentID: a.StudentID,
			Strategy:  a.Origin.Strategy.String(),
			Locked:    a.Locked || sched.Locked(a.ID),
		}
		if s, ok := staffByID[a.StaffID]; ok {
			r.StaffName = s.Name
			r.Role = s.Role.String()
		}
		if st, ok := studentsByID[a.StudentID]; ok {
			r.StudentName = st.Name
			r.Ratio = st.RatioFor(a.Session).String()
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Program != rows[j].Program {
			return rows[i].Program < rows[j].Program
		}
		if rows[i].Session != rows[j].Session {
			return rows[i].Session < rows[j].Session
		}
		if rows[i].StudentName != rows[j].StudentName {
			return rows[i].StudentName < rows[j].StudentName
		}
		return rows[i].StaffName < rows[j].StaffName
	})
	return rows
}

// WriteJSON writes the rows to w in JSON format.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteCSV writes the rows to w in CSV format with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Date, r.Session, r.Program,
			r.StaffID, r.StaffName, r.Role,
			r.StudentID, r.StudentName, r.Ratio,
			r.Strategy, strconv.FormatBool(r.Locked),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the rows to w as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	const sheet = "Schedule"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for i, header := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	for i, r := range rows {
		values := []any{
			r.Date, r.Session, r.Program,
			r.StaffID, r.StaffName, r.Role,
			r.StudentID, r.StudentName, r.Ratio,
			r.Strategy, r.Locked,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

