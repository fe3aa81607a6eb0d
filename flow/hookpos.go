package flow

import "github.com/sarchlab/pypes/flow/hooking"

// HookPosConnect marks when an edge is created. Item is the EdgeInfo.
var HookPosConnect = &hooking.HookPos{Name: "Connect"}

// HookPosElementStep marks when an element returns from Run. Item is the
// element and Detail a StepDetail.
var HookPosElementStep = &hooking.HookPos{Name: "Element Step"}

// HookPosElementFinish marks when a finished element is disconnected.
var HookPosElementFinish = &hooking.HookPos{Name: "Element Finish"}

// HookPosPacketPut marks when a packet enters a queue. Item is the packet
// and Detail a PacketDetail.
var HookPosPacketPut = &hooking.HookPos{Name: "Packet Put"}

// HookPosPacketGet marks when a packet leaves a queue.
var HookPosPacketGet = &hooking.HookPos{Name: "Packet Get"}

// HookPosTick marks the end of a scheduling pass. Detail is a TickDetail.
var HookPosTick = &hooking.HookPos{Name: "Tick"}

// StepDetail describes one call to an element's Run.
type StepDetail struct {
	Tick    uint64
	Element ElementID
	Name    string
	Step    Step
}

// PacketDetail describes where a packet was put or taken.
type PacketDetail struct {
	Tick    uint64
	Element ElementID
	Name    string
	Port    string
}

// TickDetail summarizes one scheduling pass.
type TickDetail struct {
	Tick       uint64
	Progressed bool
	Live       int
}
