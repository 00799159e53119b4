package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Encode writes the header and one row per record, in slice order.
func Encode(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(Columns))
	for i, r := range records {
		row[0] = r.Source
		row[1] = r.Destination
		row[2] = strconv.Itoa(r.PacketSize)
		row[3] = string(r.AttackType)
		row[4] = strconv.FormatFloat(r.Timestamp, 'f', -1, 64)
		row[5] = string(r.Direction)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode parses an artifact produced by Encode.
// The header must match Columns exactly.
func Decode(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("header column %d: expected %q, got %q", i, col, header[i])
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		size, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: Packet_Size: %w", line, err)
		}
		ts, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: Timestamp: %w", line, err)
		}
		if !IsValidAttackType(row[3]) {
			return nil, fmt.Errorf("line %d: unknown Attack_Type %q", line, row[3])
		}
		dir := Direction(row[5])
		if dir != DirectionIn && dir != DirectionOut {
			return nil, fmt.Errorf("line %d: unknown Direction %q", line, row[5])
		}
		records = append(records, Record{
			Source:      row[0],
			Destination: row[1],
			PacketSize:  size,
			AttackType:  AttackType(row[3]),
			Timestamp:   ts,
			Direction:   dir,
		})
	}
	return records, nil
}
