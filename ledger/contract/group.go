package contract

import (
	"github.com/lunfardo314/easyiou/ledger/iou"
	"github.com/lunfardo314/easyiou/ledger/txview"
)

// Group is consumed and produced IOUs of the transaction which share the same linear ID
type Group struct {
	LinearID iou.LinearID
	Inputs   []*iou.State
	Outputs  []*iou.State
}

// GroupStates partitions IOUs among consumed and produced states by linear ID.
// States of other types are skipped. Groups are returned in the order of first appearance,
// consumed states first
func GroupStates(consumed, produced []txview.State) []*Group {
	ret := make([]*Group, 0)
	byID := make(map[iou.LinearID]*Group)

	groupOf := func(id iou.LinearID) *Group {
		g, ok := byID[id]
		if !ok {
			g = &Group{
				LinearID: id,
				Inputs:   make([]*iou.State, 0),
				Outputs:  make([]*iou.State, 0),
			}
			byID[id] = g
			ret = append(ret, g)
		}
		return g
	}
	for _, s := range consumed {
		if o, ok := s.(*iou.State); ok {
			g := groupOf(o.LinearID)
			g.Inputs = append(g.Inputs, o)
		}
	}
	for _, s := range produced {
		if o, ok := s.(*iou.State); ok {
			g := groupOf(o.LinearID)
			g.Outputs = append(g.Outputs, o)
		}
	}
	return ret
}
