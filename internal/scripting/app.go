package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/horizonengine/harness/internal/ui"
)

// Lua globals an example script may define. All are optional.
const (
	fnSetup    = "setup"
	fnClear    = "clear"
	fnOnUpdate = "on_update"
	fnOnDrawUI = "on_draw_ui"
	fnOnRender = "on_render"
)

// App is an engine application whose hooks are Lua functions.
// Single-goroutine access only (main loop).
type App struct {
	vm     *lua.LState
	log    *zap.Logger
	canvas ui.Canvas
	uiTbl  *lua.LTable
	frame  uint64

	// OnExitRequest is invoked by the script's request_exit().
	OnExitRequest func()
}

// NewApp creates a Lua VM and loads path. A directory loads every .lua file
// in it in name order.
func NewApp(path string, log *zap.Logger) (*App, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	a := &App{vm: vm, log: log}
	a.registerAPI()

	info, err := os.Stat(path)
	if err != nil {
		vm.Close()
		return nil, fmt.Errorf("lua app %s: %w", path, err)
	}
	if info.IsDir() {
		err = a.loadDir(path)
	} else {
		err = a.loadFile(path)
	}
	if err != nil {
		vm.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		if err := a.loadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) loadFile(path string) error {
	if err := a.vm.DoFile(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	a.log.Debug("loaded lua script", zap.String("file", path))
	return nil
}

// registerAPI installs the host functions scripts can call.
func (a *App) registerAPI() {
	a.vm.SetGlobal("request_exit", a.vm.NewFunction(func(L *lua.LState) int {
		if a.OnExitRequest != nil {
			a.OnExitRequest()
		}
		return 0
	}))
	a.vm.SetGlobal("log", a.vm.NewFunction(func(L *lua.LState) int {
		a.log.Info("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	a.vm.SetGlobal("frame_index", a.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(a.frame))
		return 1
	}))

	a.uiTbl = a.vm.NewTable()
	a.uiTbl.RawSetString("text", a.vm.NewFunction(func(L *lua.LState) int {
		if a.canvas != nil {
			a.canvas.Text(L.CheckString(1))
		}
		return 0
	}))
	a.uiTbl.RawSetString("separator", a.vm.NewFunction(func(L *lua.LState) int {
		if a.canvas != nil {
			a.canvas.Separator()
		}
		return 0
	}))
}

// call invokes global fn if the script defines it.
func (a *App) call(name string, args ...lua.LValue) error {
	fn := a.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	return a.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
}

// Setup runs the script's setup(). A Lua error here is fatal.
func (a *App) Setup() error {
	if err := a.call(fnSetup); err != nil {
		return fmt.Errorf("lua %s: %w", fnSetup, err)
	}
	return nil
}

func (a *App) Clear() {
	if err := a.call(fnClear); err != nil {
		a.log.Error("lua clear error", zap.Error(err))
	}
}

func (a *App) OnUpdate(dt float32) {
	if err := a.call(fnOnUpdate, lua.LNumber(dt)); err != nil {
		a.log.Error("lua on_update error", zap.Uint64("frame", a.frame), zap.Error(err))
	}
}

func (a *App) OnDrawUI(c ui.Canvas) {
	a.canvas = c
	defer func() { a.canvas = nil }()
	if err := a.call(fnOnDrawUI, a.uiTbl); err != nil {
		a.log.Error("lua on_draw_ui error", zap.Uint64("frame", a.frame), zap.Error(err))
	}
}

func (a *App) OnRender() {
	if err := a.call(fnOnRender); err != nil {
		a.log.Error("lua on_render error", zap.Uint64("frame", a.frame), zap.Error(err))
	}
	a.frame++
}

// Close releases the Lua VM.
func (a *App) Close() {
	a.vm.Close()
}
