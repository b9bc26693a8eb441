// Package main provides the game binary: an interactive encounter against
// spawned hostiles, narrated from combat events.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/config"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/character"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/dice"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/item"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/npc"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/ruleset"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/session"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/spell"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/narrate"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/observability"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/scripting"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/server"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/game.yaml", "path to configuration file")
	charName := flag.String("character", "Aldric", "character name to load or create")
	raceID := flag.String("race", "human", "race for a newly created character")
	classID := flag.String("class", "fighter", "class for a newly created character")
	encounter := flag.String("encounter", "goblin,goblin", "comma-separated NPC template ids to fight")
	location := flag.String("location", "wilderness", "encounter location id")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load content catalogs.
	contentStart := time.Now()
	items, err := item.LoadDirectory(cfg.Content.ItemsDir)
	if err != nil {
		logger.Fatal("loading items", zap.Error(err))
	}
	spells, err := spell.LoadDirectory(cfg.Content.SpellsDir)
	if err != nil {
		logger.Fatal("loading spells", zap.Error(err))
	}
	rules, err := ruleset.LoadInto(cfg.Content.ClassesDir, cfg.Content.RacesDir)
	if err != nil {
		logger.Fatal("loading ruleset", zap.Error(err))
	}
	templates, err := npc.LoadTemplates(cfg.Content.NPCsDir)
	if err != nil {
		logger.Fatal("loading npc templates", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("items", len(items.All())),
		zap.Int("spells", len(spells.All())),
		zap.Int("npc_templates", len(templates)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Connect to PostgreSQL for character and encounter persistence.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	charRepo := postgres.NewCharacterRepository(pool.DB())
	encRepo := postgres.NewEncounterRepository(pool.DB())

	hero, class, err := loadOrCreateCharacter(ctx, charRepo, rules, *charName, *raceID, *classID)
	if err != nil {
		logger.Fatal("preparing character", zap.Error(err))
	}
	logger.Info("character ready",
		zap.String("name", hero.Name),
		zap.Int("level", hero.Level),
		zap.Int("hp", hero.CurrentHP),
	)
	if hero.CurrentHP <= 0 {
		logger.Fatal("character has no hit points left", zap.String("name", hero.Name))
	}

	// Spawn the hostile side.
	hostiles, lootTables, err := spawnEncounter(templates, *encounter)
	if err != nil {
		logger.Fatal("spawning encounter", zap.Error(err))
	}

	src := dice.NewCryptoSource()
	hooks := scripting.NewRunner(dice.NewRoller(src, logger), logger, cfg.Game.ScriptInstructionLimit)

	// Narration: model-backed when enabled, template prose otherwise.
	var narrator narrate.Narrator = narrate.TemplateNarrator{}
	if cfg.Narration.Enabled {
		narrator = narrate.NewAnthropicNarrator("", cfg.Narration.Model, cfg.Narration.MaxTokens)
	}
	narration := narrate.NewService(narrator, func(line string) {
		fmt.Println(line)
	}, logger, cfg.Narration.Buffer)

	manager, err := combat.NewManager(combat.Config{
		Items:         items,
		Spells:        spells,
		Source:        src,
		Logger:        logger,
		Events:        narration,
		Hooks:         hooks,
		CritSuccessAt: cfg.Game.CritSuccessAt,
		CritFailureAt: cfg.Game.CritFailureAt,
		UnarmedDice:   cfg.Game.UnarmedDice,
	})
	if err != nil {
		logger.Fatal("creating combat manager", zap.Error(err))
	}

	playerID := fmt.Sprintf("char-%d", hero.ID)
	snapshot := hero.Combatant(playerID)
	participants := append([]*combat.Combatant{snapshot}, hostiles...)

	state, err := manager.InitiateCombat(participants, combat.EncounterOptions{
		LocationID:      *location,
		PlayerInitiated: true,
	})
	if err != nil {
		logger.Fatal("initiating combat", zap.Error(err))
	}

	sess, err := session.New(session.Config{
		Manager:  manager,
		Spells:   spells,
		PlayerID: playerID,
		Input:    os.Stdin,
		Output:   os.Stdout,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("creating session", zap.Error(err))
	}

	logger.Info("encounter ready",
		zap.String("combat_id", state.ID),
		zap.Int("hostiles", len(hostiles)),
		zap.Duration("startup", time.Since(start)),
	)

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("narration", &server.FuncService{
		StartFn: func() error {
			narration.Start(ctx)
			<-ctx.Done()
			return nil
		},
		StopFn: func() {
			narration.Close()
		},
	})

	sessionCtx, cancelSession := context.WithCancel(ctx)
	lifecycle.Add("session", &server.FuncService{
		StartFn: func() error {
			return sess.Run(sessionCtx)
		},
		StopFn: func() {
			cancelSession()
		},
	})

	runErr := lifecycle.Run(ctx)

	if err := persistOutcome(ctx, charRepo, encRepo, manager, hero, class, snapshot, lootTables, items, src, logger); err != nil {
		logger.Error("persisting outcome", zap.Error(err))
	}
	if runErr != nil {
		logger.Fatal("session error", zap.Error(runErr))
	}
}

// loadOrCreateCharacter fetches the named character, building and storing a
// fresh one from the ruleset when it does not exist yet.
func loadOrCreateCharacter(ctx context.Context, repo *postgres.CharacterRepository, rules *ruleset.Registry, name, raceID, classID string) (*character.Character, *ruleset.Class, error) {
	hero, err := repo.GetByName(ctx, name)
	if err == nil {
		class, ok := rules.Class(hero.Class)
		if !ok {
			return nil, nil, fmt.Errorf("character %s has unknown class %q", name, hero.Class)
		}
		return hero, class, nil
	}
	if !errors.Is(err, postgres.ErrCharacterNotFound) {
		return nil, nil, err
	}

	race, ok := rules.Race(raceID)
	if !ok {
		return nil, nil, fmt.Errorf("unknown race %q", raceID)
	}
	class, ok := rules.Class(classID)
	if !ok {
		return nil, nil, fmt.Errorf("unknown class %q", classID)
	}
	built, err := character.Build(name, race, class)
	if err != nil {
		return nil, nil, fmt.Errorf("building character: %w", err)
	}
	created, err := repo.Create(ctx, built)
	if err != nil {
		return nil, nil, fmt.Errorf("storing character: %w", err)
	}
	return created, class, nil
}

// spawnEncounter instantiates one combatant per comma-separated template id.
// The second return value keys each spawn's loot table by combatant ID for
// the victory payout.
func spawnEncounter(templates []*npc.Template, spec string) ([]*combat.Combatant, map[string]*npc.LootTable, error) {
	byID := make(map[string]*npc.Template, len(templates))
	for _, tmpl := range templates {
		byID[tmpl.ID] = tmpl
	}

	spawner := npc.NewSpawner()
	var hostiles []*combat.Combatant
	loot := make(map[string]*npc.LootTable)
	for _, id := range strings.Split(spec, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		tmpl, ok := byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("unknown npc template %q", id)
		}
		spawned := spawner.Spawn(tmpl)
		hostiles = append(hostiles, spawned)
		loot[spawned.ID] = tmpl.Loot
	}
	if len(hostiles) == 0 {
		return nil, nil, fmt.Errorf("encounter spec %q produced no hostiles", spec)
	}
	return hostiles, loot, nil
}

// persistOutcome saves the finished encounter and writes combat results back
// to the character: hit points, consumed items, experience earned, and loot
// stripped from the defeated.
func persistOutcome(ctx context.Context, charRepo *postgres.CharacterRepository, encRepo *postgres.EncounterRepository, manager *combat.Manager, hero *character.Character, class *ruleset.Class, snapshot *combat.Combatant, lootTables map[string]*npc.LootTable, items *item.Catalog, src dice.Source, logger *zap.Logger) error {
	state := manager.State()
	if state == nil || state.Status == combat.StatusActive || state.Status == combat.StatusNotStarted {
		logger.Info("encounter unfinished, nothing persisted")
		return nil
	}

	victor := ""
	xp := 0
	var tables []*npc.LootTable
	if state.Status == combat.StatusCompleted {
		if state.PlayersStanding() {
			victor = "players"
			for _, e := range state.Entries {
				if !e.IsPlayer && e.Defeated() {
					xp += e.Combatant.XPValue
					tables = append(tables, lootTables[e.Combatant.ID])
				}
			}
		} else {
			victor = "hostiles"
		}
	}

	if err := encRepo.Save(ctx, state, victor, xp); err != nil {
		return fmt.Errorf("saving encounter: %w", err)
	}

	hero.SyncFromCombat(snapshot)
	if xp > 0 {
		if err := hero.AddExperience(xp, class); err != nil {
			return fmt.Errorf("awarding experience: %w", err)
		}
	}

	haul := npc.LootAll(tables, src)
	if haul.Gold > 0 {
		hero.Gold += haul.Gold
		fmt.Printf("You collect %d gold pieces from the fallen.\n", haul.Gold)
	}
	for _, drop := range haul.Items {
		name := drop.ItemDefID
		if def, ok := items.Get(drop.ItemDefID); ok {
			name = def.Name
		}
		for i := 0; i < drop.Quantity; i++ {
			hero.Inventory = append(hero.Inventory, drop.ItemDefID)
		}
		fmt.Printf("You take %s (x%d).\n", name, drop.Quantity)
	}

	if err := charRepo.SaveState(ctx, hero); err != nil {
		return fmt.Errorf("saving character: %w", err)
	}

	logger.Info("outcome persisted",
		zap.String("combat_id", state.ID),
		zap.String("victor", victor),
		zap.Int("xp", xp),
		zap.Int("gold", haul.Gold),
		zap.Int("loot_items", len(haul.Items)),
		zap.Int("character_hp", hero.CurrentHP),
		zap.Int("character_level", hero.Level),
	)
	return nil
}
