package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gohack/pkg/asm"
	"gohack/pkg/cpu"
	"gohack/pkg/utils"
)

// Hack key codes for keys without a printable character.
const (
	keyNewline   uint16 = 128
	keyBackspace uint16 = 129
	keyLeft      uint16 = 130
	keyUp        uint16 = 131
	keyRight     uint16 = 132
	keyDown      uint16 = 133
	keyHome      uint16 = 134
	keyEnd       uint16 = 135
	keyPageUp    uint16 = 136
	keyPageDown  uint16 = 137
	keyInsert    uint16 = 138
	keyDelete    uint16 = 139
	keyEscape    uint16 = 140
	keyF1        uint16 = 141
)

var specialKeys = map[ebiten.Key]uint16{
	ebiten.KeyEnter:     keyNewline,
	ebiten.KeyBackspace: keyBackspace,
	ebiten.KeyLeft:      keyLeft,
	ebiten.KeyUp:        keyUp,
	ebiten.KeyRight:     keyRight,
	ebiten.KeyDown:      keyDown,
	ebiten.KeyHome:      keyHome,
	ebiten.KeyEnd:       keyEnd,
	ebiten.KeyPageUp:    keyPageUp,
	ebiten.KeyPageDown:  keyPageDown,
	ebiten.KeyInsert:    keyInsert,
	ebiten.KeyDelete:    keyDelete,
	ebiten.KeyEscape:    keyEscape,
	ebiten.KeyF1:        keyF1,
	ebiten.KeyF2:        keyF1 + 1,
	ebiten.KeyF3:        keyF1 + 2,
	ebiten.KeyF4:        keyF1 + 3,
	ebiten.KeyF5:        keyF1 + 4,
	ebiten.KeyF6:        keyF1 + 5,
	ebiten.KeyF7:        keyF1 + 6,
	ebiten.KeyF8:        keyF1 + 7,
	ebiten.KeyF9:        keyF1 + 8,
	ebiten.KeyF10:       keyF1 + 9,
	ebiten.KeyF11:       keyF1 + 10,
	ebiten.KeyF12:       keyF1 + 11,
}

type Game struct {
	vm           *cpu.CPU
	screenImg    *ebiten.Image // reused 512×256 canvas
	stepsPerTick int
	showStatus   bool

	// lastChar is the printable key currently held down.
	lastChar uint16
	paused   bool
}

// keyCode picks the Hack key code for the current frame: a special key if
// one is held, else the last typed character while any key stays down.
func (g *Game) keyCode(typed []rune, pressed []ebiten.Key) uint16 {
	for _, k := range pressed {
		if code, ok := specialKeys[k]; ok {
			return code
		}
	}
	if len(typed) > 0 {
		g.lastChar = hackChar(typed[len(typed)-1])
	}
	if len(pressed) == 0 {
		g.lastChar = 0
	}
	return g.lastChar
}

// hackChar maps a typed rune into the Hack character set, which is ASCII
// with lower case folded to upper case as on the reference keyboard.
func hackChar(r rune) uint16 {
	if r < 32 || r > 126 {
		return 0
	}
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	return uint16(r)
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) && ebiten.IsKeyPressed(ebiten.KeyControl) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) && ebiten.IsKeyPressed(ebiten.KeyControl) {
		g.showStatus = !g.showStatus
	}

	typed := ebiten.AppendInputChars(nil)
	pressed := inpututil.AppendPressedKeys(nil)
	g.vm.PushKey(g.keyCode(typed, pressed))

	if g.paused {
		return nil
	}
	for i := 0; i < g.stepsPerTick; i++ {
		if g.vm.Halted {
			break
		}
		g.vm.Step()
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.GetFramebufferRGBA())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(2, 2)
	screen.DrawImage(g.screenImg, op)

	if g.showStatus {
		state := "running"
		switch {
		case g.vm.Halted:
			state = "halted"
		case g.paused:
			state = "paused"
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"%s  PC=%d A=%d D=%d KBD=%d steps=%d  TPS=%0.1f",
			state, g.vm.PC, g.vm.A, int16(g.vm.D), g.vm.RAM[cpu.KeyboardAddr], g.vm.Steps, ebiten.ActualTPS(),
		))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth * 2, cpu.ScreenHeight * 2
}

// loadProgram reads a .hack file, or assembles any other file, into a
// fresh CPU.
func loadProgram(path string) (*cpu.CPU, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := utils.ReadLines(string(data))
	if !strings.EqualFold(filepath.Ext(path), ".hack") {
		lines, _, err = asm.Assemble(string(data))
		if err != nil {
			return nil, fmt.Errorf("assembly failed: %w", err)
		}
	}

	vm := cpu.NewCPU()
	if err := vm.LoadHack(lines); err != nil {
		return nil, err
	}
	return vm, nil
}

func main() {
	stepsPerTick := flag.Int("speed", 20000, "instructions executed per frame")
	status := flag.Bool("status", false, "show the register overlay (toggle with Ctrl+F11)")
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] program.asm|program.hack")
		flag.PrintDefaults()
		os.Exit(2)
	}

	fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		glog.Fatalf("Failed to resolve %s: %v", flag.Arg(0), err)
	}
	vm, err := loadProgram(fullPath)
	if err != nil {
		glog.Fatalf("Failed to load program: %v", err)
	}
	glog.Infof("loaded %d words from %s", vm.ProgramSize, fullPath)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth*2, cpu.ScreenHeight*2)
	ebiten.SetWindowTitle("Hack - " + filepath.Base(fullPath))

	game := &Game{vm: vm, stepsPerTick: *stepsPerTick, showStatus: *status}
	if err := ebiten.RunGame(game); err != nil {
		glog.Fatal(err)
	}
}
