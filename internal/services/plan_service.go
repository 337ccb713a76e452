package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/saeid-a/HealthQuestBack/internal/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	PlanTaskCount       = 5
	PlanFoodPerCategory = 5
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error)
}

type PlanService struct {
	ai     jsonGenerator
	model  string
	rules  PromptRules
	logger *zap.Logger
}

func NewPlanService(ai jsonGenerator, model string, rules PromptRules, logger *zap.Logger) *PlanService {
	return &PlanService{
		ai:     ai,
		model:  model,
		rules:  rules,
		logger: logger,
	}
}

type planResponse struct {
	Tasks []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"tasks"`
	FoodGuide []struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Reason   string `json:"reason"`
	} `json:"foodGuide"`
	Motivation string `json:"motivation"`
}

// GeneratePlan returns a complete plan or a *GenerationError; a partially valid
// response is never returned.
func (s *PlanService) GeneratePlan(ctx context.Context, profile models.UserProfile) (*models.Plan, error) {
	prompt := BuildPlanPrompt(profile, s.rules)

	raw, err := s.ai.GenerateJSON(ctx, s.model, prompt, PlanResponseSchema())
	if err != nil {
		return nil, generationError("generate plan", err)
	}

	plan, err := ParsePlan(raw)
	if err != nil {
		s.logger.Warn("rejected generated plan",
			zap.String("age_group", string(profile.AgeGroup)),
			zap.Error(err),
		)
		return nil, generationError("parse plan", err)
	}
	return plan, nil
}

func BuildPlanPrompt(profile models.UserProfile, rules PromptRules) string {
	goal := "Ganhar"
	if profile.GoalType == models.GoalLose {
		goal = "Perder"
	}
	language := rules.languageName(profile.Language)

	var b strings.Builder
	b.WriteString(rules.Persona + "\n")
	b.WriteString("Analise os dados:\n")
	fmt.Fprintf(&b, "- Nome: %s\n", profile.Name)
	fmt.Fprintf(&b, "- Idade: %d (%s)\n", profile.Age, profile.AgeGroup)
	fmt.Fprintf(&b, "- Altura: %scm\n", formatMeasure(profile.HeightCM))
	fmt.Fprintf(&b, "- Peso: %skg\n", formatMeasure(profile.WeightKG))
	fmt.Fprintf(&b, "- Objetivo: %s peso (%skg)\n", goal, formatMeasure(profile.GoalWeight))
	fmt.Fprintf(&b, "- Idioma: %s\n\n", language)

	b.WriteString("Regras de Segurança:\n")
	for i, rule := range rules.SafetyRules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	if focus, ok := rules.AgeFocus[profile.AgeGroup]; ok {
		fmt.Fprintf(&b, "Foco para este perfil (%s): %s\n", profile.AgeGroup, focus)
	}
	if profile.AgeGroup.IsMinor() && rules.MinorGuard != "" {
		b.WriteString(rules.MinorGuard + "\n")
	}

	fmt.Fprintf(&b, "\nGere no idioma %s:\n", language)
	fmt.Fprintf(&b, "1. %d tarefas diárias (título, descrição, tipo: exercise/habit/food).\n", PlanTaskCount)
	fmt.Fprintf(&b, "2. Guia alimentar: %d alimentos Permitidos e %d Proibidos (nome, categoria, razão clara).\n",
		PlanFoodPerCategory, PlanFoodPerCategory)
	b.WriteString("3. Mensagem motivacional.\n")
	return b.String()
}

func PlanResponseSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tasks": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       str(),
						"description": str(),
						"type": {
							Type: genai.TypeString,
							Enum: []string{string(models.TaskExercise), string(models.TaskHabit), string(models.TaskFood)},
						},
					},
					Required: []string{"title", "description", "type"},
				},
			},
			"foodGuide": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": str(),
						"category": {
							Type: genai.TypeString,
							Enum: []string{string(models.FoodPermitted), string(models.FoodProhibited)},
						},
						"reason": str(),
					},
					Required: []string{"name", "category", "reason"},
				},
			},
			"motivation": str(),
		},
		Required: []string{"tasks", "foodGuide", "motivation"},
	}
}

// ParsePlan decodes a completion and enforces the plan cardinality: exactly
// five tasks, five permitted and five prohibited foods.
func ParsePlan(raw string) (*models.Plan, error) {
	var resp planResponse
	decoder := json.NewDecoder(strings.NewReader(raw))
	if err := decoder.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	if len(resp.Tasks) != PlanTaskCount {
		return nil, fmt.Errorf("%w: got %d tasks, want %d", ErrInvalidPlan, len(resp.Tasks), PlanTaskCount)
	}
	plan := &models.Plan{
		Tasks:      make([]models.TaskDraft, 0, PlanTaskCount),
		FoodGuide:  make([]models.FoodItem, 0, PlanFoodPerCategory*2),
		Motivation: strings.TrimSpace(resp.Motivation),
	}
	for i, task := range resp.Tasks {
		taskType := models.TaskType(strings.TrimSpace(task.Type))
		if strings.TrimSpace(task.Title) == "" || !taskType.Valid() {
			return nil, fmt.Errorf("%w: task %d is incomplete", ErrInvalidPlan, i)
		}
		plan.Tasks = append(plan.Tasks, models.TaskDraft{
			Title:       strings.TrimSpace(task.Title),
			Description: strings.TrimSpace(task.Description),
			Type:        taskType,
		})
	}

	counts := map[models.FoodCategory]int{}
	for i, food := range resp.FoodGuide {
		category := models.FoodCategory(strings.TrimSpace(food.Category))
		if strings.TrimSpace(food.Name) == "" || !category.Valid() {
			return nil, fmt.Errorf("%w: food %d is incomplete", ErrInvalidPlan, i)
		}
		counts[category]++
		plan.FoodGuide = append(plan.FoodGuide, models.FoodItem{
			Name:     strings.TrimSpace(food.Name),
			Category: category,
			Reason:   strings.TrimSpace(food.Reason),
		})
	}
	if counts[models.FoodPermitted] != PlanFoodPerCategory || counts[models.FoodProhibited] != PlanFoodPerCategory {
		return nil, fmt.Errorf("%w: got %d permitted and %d prohibited foods, want %d of each",
			ErrInvalidPlan, counts[models.FoodPermitted], counts[models.FoodProhibited], PlanFoodPerCategory)
	}
	if plan.Motivation == "" {
		return nil, fmt.Errorf("%w: motivation is empty", ErrInvalidPlan)
	}
	return plan, nil
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
