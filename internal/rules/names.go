package rules

// Well-known variable names. Content may create any variable it likes;
// these are the ones the engine itself reads (breakdown math, post
// processing) and the prefixes used for category enumeration.
const (
	VarLevel           = "LEVEL"
	VarClassHP         = "CLASS_HP"    // per-level class HP
	VarAncestryHP      = "ANCESTRY_HP" // flat ancestry HP
	VarMaxHealthBonus  = "MAX_HEALTH"  // bonus target for max HP
	VarACBonus         = "AC_BONUS"    // bonus target for armor class
	VarSpeed           = "SPEED"
	VarBulkLimitBonus  = "BULK_LIMIT" // bonus target for carrying capacity
	VarWithoutLevel    = "PROF_WITHOUT_LEVEL"
	VarLanguages       = "LANGUAGE_IDS"
	VarImmunities      = "IMMUNITIES"
	VarResistances     = "RESISTANCES"
	VarWeaknesses      = "WEAKNESSES"
	VarExtraItems      = "EXTRA_ITEM_IDS" // items granted by features
	VarArmorCheckApply = "ARMOR_CHECK_PENALTY"
)

// Variable name prefixes for category enumeration.
const (
	PrefixAttribute = "ATTRIBUTE_"
	PrefixSkill     = "SKILL_"
	PrefixSave      = "SAVE_"
)

// Attribute variable names.
const (
	AttrStrength     = "ATTRIBUTE_STR"
	AttrDexterity    = "ATTRIBUTE_DEX"
	AttrConstitution = "ATTRIBUTE_CON"
	AttrIntelligence = "ATTRIBUTE_INT"
	AttrWisdom       = "ATTRIBUTE_WIS"
	AttrCharisma     = "ATTRIBUTE_CHA"
)

// MinSpeed is the floor applied to compiled speed values. Penalties can
// never reduce a creature's speed below this.
const MinSpeed = 5
