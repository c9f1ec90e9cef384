package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fable-engine/fable/internal/game/action"
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/event"
	"github.com/fable-engine/fable/internal/game/requirement"
	"github.com/fable-engine/fable/internal/game/world"
)

// ErrMalformedAsset marks any load-time failure: unknown discriminator,
// dangling reference, negative quantity, or unparsable document. Loading
// aborts on the first such error; there is no partial world.
var ErrMalformedAsset = errors.New("malformed asset")

// World bundles everything a loaded document produces.
type World struct {
	Registry *entity.Registry
	Rooms    *world.Manager
}

// LoadFile reads and builds a world document. Files ending in .yaml or .yml
// are converted to the same document shape as JSON.
//
// Postcondition: returns a fully validated World or an error wrapping
// ErrMalformedAsset.
func LoadFile(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %q: %w", path, err)
	}

	ext := filepath.Ext(path)
	if ext == ".yaml" || ext == ".yml" {
		return LoadYAML(data)
	}
	return LoadJSON(data)
}

// LoadJSON builds a world from a JSON document.
func LoadJSON(data []byte) (*World, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing document: %v", ErrMalformedAsset, err)
	}
	return build(&doc)
}

// LoadYAML builds a world from a YAML document with the same shape as the
// JSON schema. The YAML is decoded generically and re-marshalled through
// JSON so both formats share one code path.
func LoadYAML(data []byte) (*World, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%w: parsing YAML document: %v", ErrMalformedAsset, err)
	}
	jsonBytes, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("%w: converting YAML document: %v", ErrMalformedAsset, err)
	}
	return LoadJSON(jsonBytes)
}

// build converts the raw document into validated runtime structures.
func build(doc *rawDocument) (*World, error) {
	reg, err := buildRegistry(doc)
	if err != nil {
		return nil, err
	}

	defaults, err := buildActions(doc.Config.DefaultActions, reg)
	if err != nil {
		return nil, fmt.Errorf("default actions: %w", err)
	}

	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: document has no rooms", ErrMalformedAsset)
	}

	rooms := make([]*world.Room, 0, len(doc.Content))
	for _, rr := range doc.Content {
		acts, err := buildActions(rr.Actions, reg)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", rr.ID, err)
		}
		rooms = append(rooms, &world.Room{
			ID:             entity.RoomID(rr.ID),
			Name:           rr.Name,
			EnterText:      rr.EnterText,
			FirstEnterText: rr.FirstEnterText,
			// Default actions are appended after the room's own, in
			// document order.
			Actions: append(acts, defaults...),
		})
	}

	mgr, err := world.NewManager(rooms, entity.RoomID(doc.Config.StartRoom))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
	}
	if err := mgr.ValidateExits(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
	}

	return &World{Registry: reg, Rooms: mgr}, nil
}

func buildRegistry(doc *rawDocument) (*entity.Registry, error) {
	reg := entity.NewRegistry()

	for _, ri := range doc.Items {
		item := &entity.Item{
			ID:          entity.ItemID(ri.ID),
			Name:        ri.Name,
			Description: ri.Description,
			MaxQuantity: ri.MaxQuantity,
			Value:       make(map[entity.CurrencyID]int, len(ri.Value)),
		}
		for _, p := range ri.Value {
			item.Value[entity.CurrencyID(p.CurrencyID)] = p.Price
		}
		if err := reg.RegisterItem(item); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
		}
	}

	for _, rs := range doc.Skills {
		skill := &entity.Skill{
			ID:             entity.SkillID(rs.ID),
			Name:           rs.Name,
			Description:    rs.Description,
			InitialLevel:   rs.InitialLevel,
			LevelUpLimit:   rs.LevelUpLimit,
			NextLevelRatio: rs.NextLevelRatio,
		}
		if err := reg.RegisterSkill(skill); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
		}
	}

	for _, rc := range doc.Currencies {
		cur := &entity.Currency{ID: entity.CurrencyID(rc.ID), Name: rc.Name, Symbol: rc.Symbol}
		if err := reg.RegisterCurrency(cur); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
		}
	}

	for _, rd := range doc.Dialogs {
		d := &entity.Dialog{ID: entity.DialogID(rd.ID), Name: rd.Name}
		for _, n := range rd.Nodes {
			d.Nodes = append(d.Nodes, entity.DialogNode{Speaker: n.Speaker, Text: n.Text})
		}
		if err := reg.RegisterDialog(d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
		}
	}

	for _, rr := range doc.Recipes {
		rec := &entity.Recipe{ID: entity.RecipeID(rr.ID), Name: rr.Name}
		for _, st := range rr.Inputs {
			rec.Inputs = append(rec.Inputs, entity.Stack{Item: entity.ItemID(st.ItemID), Quantity: st.Quantity})
		}
		for _, st := range rr.Outputs {
			rec.Outputs = append(rec.Outputs, entity.Stack{Item: entity.ItemID(st.ItemID), Quantity: st.Quantity})
		}
		if err := reg.RegisterRecipe(rec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
		}
	}

	for _, rb := range doc.Combatants {
		c := &entity.Combatant{
			ID:      entity.CombatantID(rb.ID),
			Name:    rb.Name,
			MaxHP:   rb.MaxHP,
			Attack:  rb.Attack,
			Defense: rb.Defense,
			Speed:   rb.Speed,
			Damage:  rb.Damage,
		}
		if err := reg.RegisterCombatant(c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
		}
	}

	return reg, nil
}

func buildActions(raws []rawAction, reg *entity.Registry) ([]action.Action, error) {
	var out []action.Action
	for i, ra := range raws {
		a, err := buildAction(&ra, reg)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func buildAction(ra *rawAction, reg *entity.Registry) (action.Action, error) {
	base, err := buildBase(ra, reg)
	if err != nil {
		return nil, err
	}

	switch ra.Class {
	case ClassExitAction:
		if ra.TargetRoom == nil {
			return nil, fmt.Errorf("%w: ExitAction missing target_room", ErrMalformedAsset)
		}
		return &action.Exit{Shared: base, Target: entity.RoomID(*ra.TargetRoom)}, nil

	case ClassDialogAction:
		if ra.DialogID == nil {
			return nil, fmt.Errorf("%w: DialogAction missing dialog_id", ErrMalformedAsset)
		}
		id := entity.DialogID(*ra.DialogID)
		if _, ok := reg.Dialog(id); !ok {
			return nil, fmt.Errorf("%w: DialogAction references unknown dialog %d", ErrMalformedAsset, id)
		}
		return &action.Dialog{Shared: base, Dialog: id}, nil

	case ClassShopAction:
		if ra.DefaultCurrency == nil {
			return nil, fmt.Errorf("%w: ShopAction missing default_currency", ErrMalformedAsset)
		}
		cur := entity.CurrencyID(*ra.DefaultCurrency)
		if _, ok := reg.Currency(cur); !ok {
			return nil, fmt.Errorf("%w: ShopAction references unknown currency %d", ErrMalformedAsset, cur)
		}
		if len(ra.Wares) == 0 {
			return nil, fmt.Errorf("%w: ShopAction missing wares", ErrMalformedAsset)
		}
		wares := make([]entity.ItemID, 0, len(ra.Wares))
		for _, w := range ra.Wares {
			id := entity.ItemID(w)
			item, ok := reg.Item(id)
			if !ok {
				return nil, fmt.Errorf("%w: ShopAction ware references unknown item %d", ErrMalformedAsset, id)
			}
			if _, priced := item.Price(cur); !priced {
				return nil, fmt.Errorf("%w: ware %d has no price in currency %d", ErrMalformedAsset, id, cur)
			}
			wares = append(wares, id)
		}
		return &action.Shop{Shared: base, DefaultCurrency: cur, Wares: wares}, nil

	case ClassManageInventoryAction:
		return &action.ManageInventory{Shared: base}, nil

	case ClassWrapperAction:
		if len(ra.Wrap) == 0 {
			return nil, fmt.Errorf("%w: WrapperAction missing wrap", ErrMalformedAsset)
		}
		events, err := buildWrap(ra.Wrap, reg)
		if err != nil {
			return nil, err
		}
		return &action.Wrapper{Shared: base, Events: events}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action class %q", ErrMalformedAsset, ra.Class)
	}
}

func buildBase(ra *rawAction, reg *entity.Registry) (action.Base, error) {
	reqs, err := buildRequirements(ra.Requirements, reg)
	if err != nil {
		return action.Base{}, err
	}

	// Visibility defaults: tags gate an action unless it is explicitly
	// marked always-visible.
	visible := len(ra.Tags) == 0
	if ra.Visible != nil {
		visible = *ra.Visible
	}

	return action.Base{
		MenuName:       ra.MenuName,
		ActivationText: ra.ActivationText,
		Requirements:   reqs,
		Tags:           ra.Tags,
		Visible:        visible,
		RevealAfterUse: ra.RevealAfterUse,
		HideAfterUse:   ra.HideAfterUse,
	}, nil
}

func buildRequirements(raws []rawRequirement, reg *entity.Registry) ([]requirement.Requirement, error) {
	var out []requirement.Requirement
	for _, rr := range raws {
		switch rr.Class {
		case ClassItemRequirement, ClassConsumeItemRequirement:
			if rr.ItemQuantity < 1 {
				return nil, fmt.Errorf("%w: %s item_quantity must be >= 1, got %d", ErrMalformedAsset, rr.Class, rr.ItemQuantity)
			}
			id := entity.ItemID(rr.ItemID)
			if _, ok := reg.Item(id); !ok {
				return nil, fmt.Errorf("%w: %s references unknown item %d", ErrMalformedAsset, rr.Class, id)
			}
			if rr.Class == ClassItemRequirement {
				out = append(out, &requirement.ItemRequirement{Item: id, Quantity: rr.ItemQuantity})
			} else {
				out = append(out, &requirement.ConsumeItemRequirement{Item: id, Quantity: rr.ItemQuantity})
			}

		case ClassSkillRequirement:
			if rr.Level < 1 {
				return nil, fmt.Errorf("%w: SkillRequirement level must be >= 1, got %d", ErrMalformedAsset, rr.Level)
			}
			id := entity.SkillID(rr.SkillID)
			if _, ok := reg.Skill(id); !ok {
				return nil, fmt.Errorf("%w: SkillRequirement references unknown skill %d", ErrMalformedAsset, id)
			}
			out = append(out, &requirement.SkillRequirement{Skill: id, Level: rr.Level})

		default:
			return nil, fmt.Errorf("%w: unknown requirement class %q", ErrMalformedAsset, rr.Class)
		}
	}
	return out, nil
}

// buildWrap decodes a WrapperAction's wrap field, which may be a single
// event object or an ordered list.
func buildWrap(raw json.RawMessage, reg *entity.Registry) ([]event.Event, error) {
	var list []rawEvent
	if err := json.Unmarshal(raw, &list); err != nil {
		var single rawEvent
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("%w: wrap must be an event object or a list: %v", ErrMalformedAsset, err)
		}
		list = []rawEvent{single}
	}
	return buildEvents(list, reg)
}

func buildEvents(raws []rawEvent, reg *entity.Registry) ([]event.Event, error) {
	var out []event.Event
	for _, re := range raws {
		ev, err := buildEvent(&re, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func buildEvent(re *rawEvent, reg *entity.Registry) (event.Event, error) {
	switch re.Class {
	case ClassAddItemEvent:
		if re.ItemQuantity < 1 {
			return nil, fmt.Errorf("%w: AddItemEvent item_quantity must be >= 1, got %d", ErrMalformedAsset, re.ItemQuantity)
		}
		id := entity.ItemID(re.ItemID)
		if _, ok := reg.Item(id); !ok {
			return nil, fmt.Errorf("%w: AddItemEvent references unknown item %d", ErrMalformedAsset, id)
		}
		return &event.AddItemEvent{Item: id, Quantity: re.ItemQuantity}, nil

	case ClassAddCurrencyEvent:
		if re.Amount < 1 {
			return nil, fmt.Errorf("%w: AddCurrencyEvent amount must be >= 1, got %d", ErrMalformedAsset, re.Amount)
		}
		id := entity.CurrencyID(re.CurrencyID)
		if _, ok := reg.Currency(id); !ok {
			return nil, fmt.Errorf("%w: AddCurrencyEvent references unknown currency %d", ErrMalformedAsset, id)
		}
		return &event.AddCurrencyEvent{Currency: id, Amount: re.Amount}, nil

	case ClassTextEvent:
		if re.Text == "" {
			return nil, fmt.Errorf("%w: TextEvent missing text", ErrMalformedAsset)
		}
		return &event.TextEvent{Text: re.Text}, nil

	case ClassSkillXPEvent:
		if re.XPGained < 1 {
			return nil, fmt.Errorf("%w: SkillXPEvent xp_gained must be >= 1, got %d", ErrMalformedAsset, re.XPGained)
		}
		id := entity.SkillID(re.SkillID)
		if _, ok := reg.Skill(id); !ok {
			return nil, fmt.Errorf("%w: SkillXPEvent references unknown skill %d", ErrMalformedAsset, id)
		}
		return &event.SkillXPEvent{Skill: id, XP: re.XPGained}, nil

	case ClassDialogEvent:
		id := entity.DialogID(re.DialogID)
		if _, ok := reg.Dialog(id); !ok {
			return nil, fmt.Errorf("%w: DialogEvent references unknown dialog %d", ErrMalformedAsset, id)
		}
		return &event.DialogEvent{Dialog: id}, nil

	case ClassCraftingEvent:
		if len(re.RecipeIDs) == 0 {
			return nil, fmt.Errorf("%w: CraftingEvent missing recipe_ids", ErrMalformedAsset)
		}
		ids := make([]entity.RecipeID, 0, len(re.RecipeIDs))
		for _, r := range re.RecipeIDs {
			id := entity.RecipeID(r)
			if _, ok := reg.Recipe(id); !ok {
				return nil, fmt.Errorf("%w: CraftingEvent references unknown recipe %d", ErrMalformedAsset, id)
			}
			ids = append(ids, id)
		}
		return &event.CraftingEvent{Recipes: ids}, nil

	case ClassViewSummaryEvent:
		return &event.ViewSummaryEvent{}, nil

	case ClassCombatEvent:
		if len(re.Allies) == 0 || len(re.Enemies) == 0 {
			return nil, fmt.Errorf("%w: CombatEvent needs non-empty allies and enemies", ErrMalformedAsset)
		}
		allies, err := combatantIDs(re.Allies, reg)
		if err != nil {
			return nil, err
		}
		enemies, err := combatantIDs(re.Enemies, reg)
		if err != nil {
			return nil, err
		}
		victory, err := buildEvents(re.OnVictory, reg)
		if err != nil {
			return nil, err
		}
		return &event.CombatEvent{Allies: allies, Enemies: enemies, OnVictory: victory}, nil

	default:
		return nil, fmt.Errorf("%w: unknown event class %q", ErrMalformedAsset, re.Class)
	}
}

func combatantIDs(raw []int, reg *entity.Registry) ([]entity.CombatantID, error) {
	out := make([]entity.CombatantID, 0, len(raw))
	for _, r := range raw {
		id := entity.CombatantID(r)
		if _, ok := reg.Combatant(id); !ok {
			return nil, fmt.Errorf("%w: CombatEvent references unknown combatant %d", ErrMalformedAsset, id)
		}
		out = append(out, id)
	}
	return out, nil
}
