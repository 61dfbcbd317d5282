// Package utils 提供输入与平台相关的通用工具
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// TapThreshold 按下到释放之间移动不超过该像素数时视为点击
const TapThreshold = 8

// Pointer 一帧内的指针状态，统一鼠标和触摸
type Pointer struct {
	Pressed bool
	X, Y    int
	// TouchID 触摸ID（-1 表示鼠标）
	TouchID ebiten.TouchID
}

// IsTouch 是否为触摸输入
func (p Pointer) IsTouch() bool {
	return p.TouchID >= 0
}

// ReadPointer 读取当前指针，优先检测触摸
func ReadPointer() Pointer {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return Pointer{Pressed: true, X: x, Y: y, TouchID: touchIDs[0]}
	}

	x, y := ebiten.CursorPosition()
	return Pointer{
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		X:       x,
		Y:       y,
		TouchID: -1,
	}
}

// IsJustTouchedOrClicked 检查是否刚刚发生点击或触摸
// 返回是否点击以及点击位置
func IsJustTouchedOrClicked() (bool, int, int) {
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}

	return false, 0, 0
}

// ============================================================================
// 拖拽状态管理器 - 用于相机环绕的拖拽交互
// ============================================================================

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 拖拽开始（刚按下）
	DragStateStarted
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
	// DragStateEnded 拖拽结束（释放）
	DragStateEnded
)

// DragInfo 拖拽信息
type DragInfo struct {
	State DragState
	// StartX, StartY 拖拽起始位置（屏幕坐标）
	StartX, StartY int
	// CurrentX, CurrentY 当前位置（屏幕坐标）
	CurrentX, CurrentY int
	// LastX, LastY 上一帧位置，用于计算逐帧位移
	LastX, LastY int
	// MaxDistance 拖拽过程中离起点的最大曼哈顿距离
	MaxDistance int
	// TouchID 当前跟踪的触摸ID（-1 表示鼠标）
	TouchID ebiten.TouchID
}

// DragManager 跟踪触摸/鼠标的拖拽状态
type DragManager struct {
	info DragInfo
}

// NewDragManager 创建拖拽管理器
func NewDragManager() *DragManager {
	dm := &DragManager{}
	dm.Reset()
	return dm
}

// Update 读取当前指针并推进状态（每帧调用一次）
func (dm *DragManager) Update() {
	dm.Advance(ReadPointer())
}

// Advance 用给定的指针状态推进一帧
func (dm *DragManager) Advance(p Pointer) {
	switch dm.info.State {
	case DragStateNone:
		if p.Pressed {
			dm.info = DragInfo{
				State:    DragStateStarted,
				StartX:   p.X,
				StartY:   p.Y,
				CurrentX: p.X,
				CurrentY: p.Y,
				LastX:    p.X,
				LastY:    p.Y,
				TouchID:  p.TouchID,
			}
		}

	case DragStateStarted, DragStateDragging:
		// 跟踪的触摸已释放，或切换成了另一个输入源
		if !p.Pressed || p.TouchID != dm.info.TouchID {
			dm.info.State = DragStateEnded
			dm.info.LastX, dm.info.LastY = dm.info.CurrentX, dm.info.CurrentY
			return
		}
		dm.info.State = DragStateDragging
		dm.info.LastX, dm.info.LastY = dm.info.CurrentX, dm.info.CurrentY
		dm.info.CurrentX, dm.info.CurrentY = p.X, p.Y
		if d := abs(p.X-dm.info.StartX) + abs(p.Y-dm.info.StartY); d > dm.info.MaxDistance {
			dm.info.MaxDistance = d
		}

	case DragStateEnded:
		// 结束状态只持续一帧
		dm.Reset()
		dm.Advance(p)
	}
}

// Reset 重置拖拽状态
func (dm *DragManager) Reset() {
	dm.info = DragInfo{
		State:   DragStateNone,
		TouchID: -1,
	}
}

// GetState 获取当前拖拽状态
func (dm *DragManager) GetState() DragState {
	return dm.info.State
}

// GetInfo 获取完整拖拽信息
func (dm *DragManager) GetInfo() DragInfo {
	return dm.info
}

// IsDragging 是否正在拖拽
func (dm *DragManager) IsDragging() bool {
	return dm.info.State == DragStateDragging
}

// JustEnded 是否刚结束拖拽（本帧）
func (dm *DragManager) JustEnded() bool {
	return dm.info.State == DragStateEnded
}

// IsTap 本帧结束的拖拽是否只是一次点击
func (dm *DragManager) IsTap() bool {
	return dm.JustEnded() && dm.info.MaxDistance <= TapThreshold
}

// Delta 返回本帧的位移
func (dm *DragManager) Delta() (dx, dy int) {
	if dm.info.State != DragStateDragging {
		return 0, 0
	}
	return dm.info.CurrentX - dm.info.LastX, dm.info.CurrentY - dm.info.LastY
}

// GetDragDistance 获取拖拽距离（从起点到当前位置）
func (dm *DragManager) GetDragDistance() (dx, dy int) {
	return dm.info.CurrentX - dm.info.StartX, dm.info.CurrentY - dm.info.StartY
}

// IsTouchDrag 是否为触摸拖拽
func (dm *DragManager) IsTouchDrag() bool {
	return dm.info.TouchID >= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
