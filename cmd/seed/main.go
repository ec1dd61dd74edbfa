package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"whodunnit/internal/model"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "whodunnit"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	scripts := client.Database(database).Collection("scripts")

	script := sampleScript()

	// Re-seeding replaces the previous copy of the same script.
	filter := bson.M{"scriptId": script.ScriptID}
	opts := options.Replace().SetUpsert(true)
	if _, err := scripts.ReplaceOne(ctx, filter, script, opts); err != nil {
		log.Fatalf("Failed to seed script: %v", err)
	}

	fmt.Printf("Seeded script '%s' (%s)\n", script.Title, script.ScriptID)
}

func sampleScript() *model.Script {
	return &model.Script{
		ScriptID:       "blackwood-manor",
		Title:          "Murder at Blackwood Manor",
		MinPlayers:     2,
		MaxPlayers:     6,
		NumberOfRounds: 6,
		RoundInstructions: map[model.Round]string{
			model.Round1:          "Introduce yourselves. Each guest reads their arrival story aloud.",
			model.Round2:          "The body is discovered in the library. Read your whereabouts for the evening.",
			model.Round3:          "The inspector searches the grounds. Reveal what you saw in the garden.",
			model.Round4:          "A letter surfaces in the study. Read your connection to the deceased.",
			model.Round5:          "The storm traps everyone inside. Share your final pieces of evidence.",
			model.RoundAccusation: "Point your finger: each guest must accuse at least one suspect.",
			model.RoundFinal:      "Final statements. The accused may defend themselves before the reveal.",
			model.RoundEnd:        "The murderer is revealed. Tally the accusations.",
		},
		Characters: []model.Character{
			character("Colonel Mustard", true,
				"You arrived late, boots muddied, claiming a walk in the rain.",
				"You say you were cleaning your service revolver in the gun room.",
				"You saw no one in the garden. You were not in the garden. Repeat this.",
				"The letter mentions a debt you owed the deceased. Deflect.",
				"Your revolver is missing a single round. Explain nothing.",
				"Accuse loudly. The best defense is offense.",
				"Hold your composure. They have no proof.",
			),
			character("Miss Scarlett", false,
				"You arrived first, before the other guests, to speak with the host alone.",
				"You were in the conservatory, playing piano no one heard.",
				"You glimpsed a figure near the hedge maze around midnight.",
				"The letter is in your handwriting. Admit the affair, deny the rest.",
				"You found a muddy bootprint by the library window.",
				"Share your suspicion about the bootprint before accusing.",
				"Appeal to the other guests' reason.",
			),
			character("Professor Plum", false,
				"You arrived with a locked briefcase you refuse to open.",
				"You were cataloguing the host's collection in the study.",
				"You heard a shot, or perhaps thunder, around midnight.",
				"The letter cites your unfinished manuscript on the family.",
				"Your briefcase held the host's will. Produce it now.",
				"Read the will aloud before you accuse.",
				"Summarize the evidence like the academic you are.",
			),
			character("Mrs. Peacock", false,
				"You arrived in mourning dress, though nobody had died. Yet.",
				"You were writing letters in your room, alone.",
				"You watched the garden all night from your window.",
				"The letter names you beneficiary of the estate.",
				"You saw who crossed the lawn at midnight. Say so.",
				"Name the figure from the lawn in your accusation.",
				"Stand by what you saw.",
			),
		},
	}
}

func character(name string, murderer bool, texts ...string) model.Character {
	rounds := map[model.Round]string{}
	order := []model.Round{
		model.Round1, model.Round2, model.Round3, model.Round4,
		model.Round5, model.RoundAccusation, model.RoundFinal,
	}
	for i, text := range texts {
		if i >= len(order) {
			break
		}
		rounds[order[i]] = text
	}
	return model.Character{
		Name:       name,
		IsMurderer: murderer,
		Rounds:     rounds,
	}
}
