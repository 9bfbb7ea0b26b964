package roadmap

import "context"

type dragState struct {
	id     string
	startX float64
	startY float64
	origin Position
}

// BeginDrag starts a drag gesture on id at pointer (px, py)
// BeginDrag 在指针位置 (px, py) 开始拖拽节点
func (e *Engine) BeginDrag(id string, px, py float64) error {
	n, ok := e.tree.Get(id)
	if !ok {
		return ErrNodeNotFound
	}
	e.drag = &dragState{id: id, startX: px, startY: py, origin: n.Position}
	return nil
}

// Dragging returns the id under drag
func (e *Engine) Dragging() (string, bool) {
	if e.drag == nil {
		return "", false
	}
	return e.drag.id, true
}

// DragTo moves the node with the pointer and redraws; nothing is sent to the gateway
// DragTo 随指针移动节点并重绘，不调用网关
func (e *Engine) DragTo(px, py float64) (Position, error) {
	if e.drag == nil {
		return Position{}, ErrNotDragging
	}
	n, ok := e.tree.Get(e.drag.id)
	if !ok {
		e.drag = nil
		return Position{}, ErrNodeNotFound
	}
	n.Position = Position{
		X: e.drag.origin.X + (px - e.drag.startX),
		Y: e.drag.origin.Y + (py - e.drag.startY),
	}
	e.Refresh()
	return n.Position, nil
}

// EndDrag finishes the gesture and pushes exactly one position update
// EndDrag 结束拖拽，仅推送一次位置更新
func (e *Engine) EndDrag(ctx context.Context) (Position, error) {
	if e.drag == nil {
		return Position{}, ErrNotDragging
	}
	id := e.drag.id
	e.drag = nil
	n, ok := e.tree.Get(id)
	if !ok {
		return Position{}, ErrNodeNotFound
	}
	e.pushUpdate(ctx, id, PositionPatch(n.Position))
	return n.Position, nil
}

// MoveNode places id at (x, y) as a single drag gesture
// MoveNode 以一次完整拖拽将节点移动到 (x, y)
func (e *Engine) MoveNode(ctx context.Context, id string, x, y float64) (Position, error) {
	n, ok := e.tree.Get(id)
	if !ok {
		return Position{}, ErrNodeNotFound
	}
	if err := e.BeginDrag(id, n.Position.X, n.Position.Y); err != nil {
		return Position{}, err
	}
	if _, err := e.DragTo(x, y); err != nil {
		return Position{}, err
	}
	return e.EndDrag(ctx)
}
