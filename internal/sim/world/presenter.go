package world

import "log"

// presenter stands in for the animation layer: it records the walking flag
// for observers and logs one-shot animations.
type presenter struct {
	log     *log.Logger
	walking bool
	pickups int
	drops   int
}

func (p *presenter) SetWalking(walking bool) { p.walking = walking }

func (p *presenter) TriggerPickup() {
	p.pickups++
	p.log.Printf("anim: pickup")
}

func (p *presenter) TriggerDrop() {
	p.drops++
	p.log.Printf("anim: drop")
}
