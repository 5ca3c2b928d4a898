package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mpelletier/rosterd/core/model"
)

func sampleDay(t *testing.T) (*model.Schedule, []model.Staff, []model.Student) {
	t.Helper()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	staff := []model.Staff{
		{ID: "rbt1", Name: "Ana", Role: model.RoleRBT, Primary: true, Active: true},
		{ID: "ea1", Name: "Ben", Role: model.RoleEA, Primary: true, Active: true},
	}
	students := []model.Student{
		{ID: "kid1", Name: "Milo", Program: model.ProgramPrimary, RatioAM: model.RatioTwoToOne, RatioPM: model.RatioOneToOne, Active: true},
		{ID: "kid2", Name: "Ada", Program: model.ProgramPrimary, Active: true},
	}
	sched := model.NewSchedule(date)
	a1 := model.NewAssignment("rbt1", "kid1", model.SessionAM, model.ProgramPrimary, date,
		model.Origin{Strategy: model.StrategyAuto})
	a2 := model.NewAssignment("ea1", "kid2", model.SessionAM, model.ProgramPrimary, date,
		model.Origin{Strategy: model.StrategyManual})
	a2.Locked = true
	for _, a := range []model.Assignment{a1, a2} {
		if err := sched.Add(a); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return sched, staff, students
}

func TestBuildRows(t *testing.T) {
	sched, staff, students := sampleDay(t)
	rows := BuildRows(sched, staff, students)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Sorted by student name: Ada before Milo.
	if rows[0].StudentName != "Ada" || rows[1].StudentName != "Milo" {
		t.Fatalf("unexpected order: %q, %q", rows[0].StudentName, rows[1].StudentName)
	}
	ada := rows[0]
	if ada.StaffName != "Ben" || ada.Role != "EA" || ada.Ratio != "1:1" || !ada.Locked || ada.Strategy != "manual" {
		t.Errorf("bad row: %+v", ada)
	}
	milo := rows[1]
	if milo.Session != "AM" || milo.Program != "Primary" || milo.Ratio != "2:1" || milo.Locked {
		t.Errorf("bad row: %+v", milo)
	}
	if milo.Date != "2025-03-10" {
		t.Errorf("bad date: %q", milo.Date)
	}
}

func TestBuildRowsUnknownParties(t *testing.T) {
	sched, _, _ := sampleDay(t)
	rows := BuildRows(sched, nil, nil)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.StaffName != "" || r.StudentName != "" || r.Ratio != "" {
			t.Errorf("names should stay empty for unknown parties: %+v", r)
		}
		if r.StaffID == "" || r.StudentID == "" {
			t.Errorf("ids must survive: %+v", r)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	sched, staff, students := sampleDay(t)
	rows := BuildRows(sched, staff, students)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded []Row
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 || decoded[0].StudentName != "Ada" {
		t.Fatalf("bad roundtrip: %+v", decoded)
	}
}

func TestWriteCSV(t *testing.T) {
	sched, staff, students := sampleDay(t)
	rows := BuildRows(sched, staff, students)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "date" || records[0][10] != "locked" {
		t.Fatalf("bad header: %v", records[0])
	}
	if records[1][7] != "Ada" || records[1][10] != "true" {
		t.Fatalf("bad first row: %v", records[1])
	}
	if records[2][8] != "2:1" {
		t.Fatalf("bad ratio cell: %v", records[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	sched, staff, students := sampleDay(t)
	rows := BuildRows(sched, staff, students)
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetCellValue("Schedule", "A1")
	if err != nil || got != "date" {
		t.Fatalf("header cell: %q err=%v", got, err)
	}
	got, err = f.GetCellValue("Schedule", "H2")
	if err != nil || got != "Ada" {
		t.Fatalf("student cell: %q err=%v", got, err)
	}
	got, err = f.GetCellValue("Schedule", "I3")
	if err != nil || got != "2:1" {
		t.Fatalf("ratio cell: %q err=%v", got, err)
	}
	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Schedule" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}
}

func TestWritersEmptyRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("json: %v", err)
	}
	buf.Reset()
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("csv: %v", err)
	}
	buf.Reset()
	if err := WriteXLSX(&buf, nil); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
}
