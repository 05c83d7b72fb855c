package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// humanReadableState is the JSON-serializable snapshot of CPU control state.
type humanReadableState struct {
	A           uint16 `json:"a"`
	D           uint16 `json:"d"`
	PC          uint16 `json:"pc"`
	Halted      bool   `json:"halted"`
	Steps       uint64 `json:"steps"`
	ProgramSize int    `json:"program_size"`
	Keyboard    uint16 `json:"keyboard"`
}

// HibernateToBytes serialises the complete machine state into an in-memory
// ZIP archive: cpu_state.json, rom.bin and ram.bin.
func (c *CPU) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := humanReadableState{
		A:           c.A,
		D:           c.D,
		PC:          c.PC,
		Halted:      c.Halted,
		Steps:       c.Steps,
		ProgramSize: c.ProgramSize,
		Keyboard:    c.RAM[KeyboardAddr],
	}
	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cpu_state: %w", err)
	}
	if err := writeZipEntry(zw, "cpu_state.json", jsonData); err != nil {
		return nil, err
	}

	if err := writeZipEntry(zw, "rom.bin", uint16SliceToLE(c.ROM[:c.ProgramSize])); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "ram.bin", uint16SliceToLE(c.RAM[:])); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes applies an archive produced by HibernateToBytes.
func (c *CPU) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "cpu_state.json")
	if err != nil {
		return err
	}
	var state humanReadableState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal cpu_state: %w", err)
	}
	if state.ProgramSize < 0 || state.ProgramSize > ROMSize {
		return fmt.Errorf("invalid program size %d in snapshot", state.ProgramSize)
	}

	romData, err := readZipEntry(fileMap, "rom.bin")
	if err != nil {
		return err
	}
	if len(romData) != state.ProgramSize*2 {
		return fmt.Errorf("rom.bin holds %d bytes, want %d", len(romData), state.ProgramSize*2)
	}
	ramData, err := readZipEntry(fileMap, "ram.bin")
	if err != nil {
		return err
	}
	if len(ramData) != RAMSize*2 {
		return fmt.Errorf("ram.bin holds %d bytes, want %d", len(ramData), RAMSize*2)
	}

	c.ROM = [ROMSize]uint16{}
	leToUint16Slice(romData, c.ROM[:state.ProgramSize])
	leToUint16Slice(ramData, c.RAM[:])

	c.A = state.A
	c.D = state.D
	c.PC = state.PC
	c.Halted = state.Halted
	c.Steps = state.Steps
	c.ProgramSize = state.ProgramSize
	c.RAM[KeyboardAddr] = state.Keyboard

	return nil
}

// HibernateToFile writes the hibernation archive to the given file path.
func (c *CPU) HibernateToFile(path string) error {
	data, err := c.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile reads a hibernation archive from the given file path and
// restores the machine state.
func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func uint16SliceToLE(src []uint16) []byte {
	out := make([]byte, len(src)*2)
	for i, v := range src {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func leToUint16Slice(src []byte, dst []uint16) {
	for i := range dst {
		if i*2+1 < len(src) {
			dst[i] = binary.LittleEndian.Uint16(src[i*2:])
		}
	}
}
