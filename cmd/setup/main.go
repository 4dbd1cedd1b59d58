package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/storyloom/storyloom/internal/config"
	"github.com/storyloom/storyloom/internal/logger"
	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/world"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("228"))
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Setup(cfg)

	store := storage.NewFileStorage(cfg.DataDir, log)
	ctx := context.Background()

	kg, err := store.LoadKnowledgeGraph(ctx)
	if err != nil {
		fmt.Println(errorStyle.Render("Failed to read the knowledge graph: " + err.Error()))
		os.Exit(1)
	}
	if kg == nil {
		fmt.Println(errorStyle.Render("No knowledge graph found in " + cfg.DataDir + "."))
		fmt.Println("Upload a book through the API (POST /v1/book) or generate the graph first.")
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render("Storyloom setup — " + kg.BookInfo.Title))
	if kg.BookInfo.Author != "" {
		fmt.Println(faintStyle.Render("by " + kg.BookInfo.Author))
	}
	fmt.Println()
	fmt.Println("Choose the character you want to play:")
	fmt.Println()

	for i, c := range kg.Characters {
		line := fmt.Sprintf("  %2d. %s", i+1, nameStyle.Render(c.Name))
		if len(c.PersonalityTraits) > 0 {
			line += faintStyle.Render("  (" + strings.Join(c.PersonalityTraits, ", ") + ")")
		}
		fmt.Println(line)
	}
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	selected := chooseCharacter(reader, kg)

	fmt.Print(promptStyle.Render("Story language [English]: "))
	language, _ := reader.ReadString('\n')
	language = strings.TrimSpace(language)

	doc, err := world.NewDynamicWorld(kg, selected, language)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	// A fresh selection abandons any previous playthrough.
	if err := store.DeleteWorld(ctx); err != nil {
		fmt.Println(errorStyle.Render("Failed to reset previous playthrough: " + err.Error()))
		os.Exit(1)
	}
	if err := store.SaveWorld(ctx, doc); err != nil {
		fmt.Println(errorStyle.Render("Failed to save the world document: " + err.Error()))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(okStyle.Render("You are now playing " + doc.User.CharacterPlayed + "."))
	fmt.Println(faintStyle.Render("Language: " + doc.User.Language))
	fmt.Println("Start the API and open the console to begin the story.")
}

// chooseCharacter loops until the input matches a listed character by
// number or by case-insensitive name.
func chooseCharacter(reader *bufio.Reader, kg *world.KnowledgeGraph) string {
	for {
		fmt.Print(promptStyle.Render("Character (name or number): "))
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			fmt.Println(errorStyle.Render("No selection made."))
			os.Exit(1)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if n, err := strconv.Atoi(input); err == nil {
			if n >= 1 && n <= len(kg.Characters) {
				return kg.Characters[n-1].Name
			}
			fmt.Println(errorStyle.Render(fmt.Sprintf("Pick a number between 1 and %d.", len(kg.Characters))))
			continue
		}

		if c := kg.FindCharacter(input); c != nil {
			return c.Name
		}
		fmt.Println(errorStyle.Render("No character named " + input + " in this story."))
	}
}
