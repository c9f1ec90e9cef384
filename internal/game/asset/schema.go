// Package asset loads world documents into the entity registry and room
// graph. The schema is discriminator-driven: every action, requirement, and
// event object carries a "class" string selecting its variant. Unknown
// discriminators, dangling references, and negative quantities are
// load-time fatal errors; nothing about a document can fail at runtime.
package asset

import "encoding/json"

// Class discriminator values recognised by the loader.
const (
	ClassExitAction            = "ExitAction"
	ClassWrapperAction         = "WrapperAction"
	ClassDialogAction          = "DialogAction"
	ClassShopAction            = "ShopAction"
	ClassManageInventoryAction = "ManageInventoryAction"

	ClassItemRequirement        = "ItemRequirement"
	ClassConsumeItemRequirement = "ConsumeItemRequirement"
	ClassSkillRequirement       = "SkillRequirement"

	ClassAddItemEvent     = "AddItemEvent"
	ClassAddCurrencyEvent = "AddCurrencyEvent"
	ClassTextEvent        = "TextEvent"
	ClassSkillXPEvent     = "SkillXPEvent"
	ClassDialogEvent      = "DialogEvent"
	ClassCraftingEvent    = "CraftingEvent"
	ClassViewSummaryEvent = "ViewSummaryEvent"
	ClassCombatEvent      = "CombatEvent"
)

// rawDocument is the top-level shape of a world document.
type rawDocument struct {
	Config     rawConfig      `json:"config"`
	Items      []rawItem      `json:"items"`
	Skills     []rawSkill     `json:"skills"`
	Currencies []rawCurrency  `json:"currencies"`
	Dialogs    []rawDialog    `json:"dialogs"`
	Recipes    []rawRecipe    `json:"recipes"`
	Combatants []rawCombatant `json:"combatants"`
	Content    []rawRoom      `json:"content"`
}

type rawConfig struct {
	StartRoom int `json:"start_room"`
	// DefaultActions are appended to every room's own action list.
	DefaultActions []rawAction `json:"default_actions"`
}

type rawPrice struct {
	CurrencyID int `json:"currency_id"`
	Price      int `json:"price"`
}

type rawItem struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	MaxQuantity int        `json:"max_quantity"`
	Value       []rawPrice `json:"value"`
}

type rawSkill struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	InitialLevel   int     `json:"initial_level"`
	LevelUpLimit   int     `json:"level_up_limit"`
	NextLevelRatio float64 `json:"next_level_ratio"`
}

type rawCurrency struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type rawDialogNode struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type rawDialog struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Nodes []rawDialogNode `json:"nodes"`
}

type rawStack struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

type rawRecipe struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Inputs  []rawStack `json:"inputs"`
	Outputs []rawStack `json:"outputs"`
}

type rawCombatant struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	MaxHP   int    `json:"max_hp"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
	Speed   int    `json:"speed"`
	Damage  string `json:"damage"`
}

type rawRoom struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	EnterText      string      `json:"enter_text"`
	FirstEnterText string      `json:"first_enter_text"`
	Actions        []rawAction `json:"actions"`
	// Comment is designer metadata, ignored at runtime.
	Comment string `json:"comment"`
}

// rawAction is the union of every action variant's fields; Class selects
// which are meaningful.
type rawAction struct {
	Class          string           `json:"class"`
	MenuName       string           `json:"menu_name"`
	ActivationText string           `json:"activation_text"`
	Requirements   []rawRequirement `json:"requirements"`
	Tags           []string         `json:"tags"`
	Visible        *bool            `json:"visible"`
	RevealAfterUse []string         `json:"reveal_after_use"`
	HideAfterUse   bool             `json:"hide_after_use"`
	Comment        string           `json:"comment"`

	// ExitAction
	TargetRoom *int `json:"target_room"`
	// DialogAction
	DialogID *int `json:"dialog_id"`
	// ShopAction
	DefaultCurrency *int  `json:"default_currency"`
	Wares           []int `json:"wares"`
	// WrapperAction: a single event object or a list of them.
	Wrap json.RawMessage `json:"wrap"`
}

type rawRequirement struct {
	Class        string `json:"class"`
	ItemID       int    `json:"item_id"`
	ItemQuantity int    `json:"item_quantity"`
	SkillID      int    `json:"skill_id"`
	Level        int    `json:"level"`
}

// rawEvent is the union of every event variant's fields; Class selects
// which are meaningful.
type rawEvent struct {
	Class        string     `json:"class"`
	ItemID       int        `json:"item_id"`
	ItemQuantity int        `json:"item_quantity"`
	CurrencyID   int        `json:"currency_id"`
	Amount       int        `json:"amount"`
	Text         string     `json:"text"`
	SkillID      int        `json:"skill_id"`
	XPGained     int        `json:"xp_gained"`
	DialogID     int        `json:"dialog_id"`
	RecipeIDs    []int      `json:"recipe_ids"`
	Allies       []int      `json:"allies"`
	Enemies      []int      `json:"enemies"`
	OnVictory    []rawEvent `json:"on_victory"`
}
