// Package app 提供粒子预览器的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/embedded"
	"github.com/gonewx/particles3d/pkg/game"
)

// 默认窗口尺寸
const (
	ScreenWidth  = 1024
	ScreenHeight = 768
)

// AppName 用于设置存储目录
const AppName = "particles3d"

// PresetDir 嵌入资源中的预设目录
const PresetDir = "data/presets"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Preset 指定启动预设，为空则使用上次的预设
	Preset string
	// Seed 发射器随机种子，0 表示按时间生成
	Seed int64
}

// App 是预览器的核心包装器，实现 ebiten.Game 接口
type App struct {
	viewer                   *Viewer
	settings                 *game.SettingsManager
	verbose                  bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化预览器
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	fsys, err := embedded.FS()
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded data: %w", err)
	}
	presets, err := config.LoadPresetDir(fsys, PresetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	log.Printf("[App] Loaded %d presets from %s", len(presets), PresetDir)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	settings := game.OpenSettingsManager(AppName)
	viewer, err := NewViewer(presets, settings, seed, cfg.Preset)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize viewer: %w", err)
	}
	viewer.verbose = cfg.Verbose

	// 默认静音运行：抑制系统日志；如需逐帧统计，传入 -verbose
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	return &App{
		viewer:   viewer,
		settings: settings,
		verbose:  cfg.Verbose,
	}, nil
}

// Update 更新预览器状态
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	return a.viewer.Update()
}

// Draw 绘制预览画面
func (a *App) Draw(screen *ebiten.Image) {
	a.viewer.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 使逻辑尺寸跟随窗口，投影保持正确的宽高比
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.viewer.Layout(outsideWidth, outsideHeight)
}

// Close 保存设置，在游戏循环结束后调用
func (a *App) Close() error {
	if err := a.settings.Save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
