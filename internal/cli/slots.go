package cli

import (
	"fmt"
	"time"

	"github.com/yanqian/planeet/internal/domain/availability"
)

type SlotsGenerateCmd struct {
	VenueID string `arg:"" help:"Venue ID."`
	Counter int    `short:"c" help:"Seats per slot." default:"100"`
}

func (c *SlotsGenerateCmd) Validate() error {
	if c.Counter <= 0 {
		return fmt.Errorf("counter must be positive")
	}
	return nil
}

func (c *SlotsGenerateCmd) Run(ctx *Context) error {
	oracle, cleanup, err := ctx.openOracle()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := oracle.GenerateTimeSlots(ctx.Ctx, c.VenueID, c.Counter); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "slots ready for %s\n", c.VenueID)
	return nil
}

type SlotsListCmd struct {
	VenueID string `arg:"" help:"Venue ID."`
}

func (c *SlotsListCmd) Run(ctx *Context) error {
	store, cleanup, err := ctx.openSlotStore()
	if err != nil {
		return err
	}
	defer cleanup()

	slots, err := store.Slots(ctx.Ctx, c.VenueID)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintf(ctx.Out, "no slots for %s\n", c.VenueID)
		return nil
	}
	for _, s := range slots {
		fmt.Fprintf(ctx.Out, "%s\t%d\n", s.Hours(), s.Counter)
	}
	return nil
}

type SlotsCheckCmd struct {
	VenueID   string `arg:"" help:"Venue ID."`
	Window    string `arg:"" help:"Window as HH:MM-HH:MM."`
	GroupSize int    `short:"g" help:"Party size." default:"1"`
}

func (c *SlotsCheckCmd) Run(ctx *Context) error {
	w, err := availability.ParseWindow(time.Now(), c.Window)
	if err != nil {
		return err
	}
	oracle, cleanup, err := ctx.openOracle()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := oracle.CheckOverlapping(ctx.Ctx, c.VenueID, w)
	if err != nil {
		return err
	}
	fits := res.Available && res.RemainingCapacity >= c.GroupSize
	fmt.Fprintf(ctx.Out, "%s %s available=%t remaining=%d fits=%t\n", c.VenueID, w, res.Available, res.RemainingCapacity, fits)
	return nil
}

type SlotsBookCmd struct {
	VenueID string `arg:"" help:"Venue ID."`
	Window  string `arg:"" help:"Window as HH:MM-HH:MM."`
	Seats   int    `short:"n" help:"Seats to take." default:"1"`
}

func (c *SlotsBookCmd) Validate() error {
	if c.Seats <= 0 {
		return fmt.Errorf("seats must be positive")
	}
	return nil
}

func (c *SlotsBookCmd) Run(ctx *Context) error {
	w, err := availability.ParseWindow(time.Now(), c.Window)
	if err != nil {
		return err
	}
	store, cleanup, err := ctx.openSlotStore()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.Book(ctx.Ctx, c.VenueID, w, c.Seats); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "booked %d seats at %s %s\n", c.Seats, c.VenueID, w)
	return nil
}

func (c *Context) openSlotStore() (availability.SlotStore, func(), error) {
	oracle, cleanup, err := c.openOracle()
	if err != nil {
		return nil, nil, err
	}
	store, ok := oracle.(availability.SlotStore)
	if !ok {
		cleanup()
		return nil, nil, fmt.Errorf("oracle backend %q does not expose its slots", c.Config.Oracle.Backend)
	}
	return store, cleanup, nil
}
