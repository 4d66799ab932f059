package main

import (
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/indicae/backend/config"
	"github.com/indicae/backend/internal/database"
	"github.com/indicae/backend/internal/models"
)

type seedUser struct {
	name       string
	email      string
	city       string
	education  string
	softSkills []string
	hardSkills []string
}

var seedUsers = []seedUser{
	{
		name: "Ana Souza", email: "ana@example.com", city: "São Paulo",
		education:  "Administração - USP",
		softSkills: []string{"Comunicação", "Liderança"},
		hardSkills: []string{"Excel", "Gestão de Projetos"},
	},
	{
		name: "Bruno Lima", email: "bruno@example.com", city: "Rio de Janeiro",
		education:  "Ciência da Computação - UFRJ",
		softSkills: []string{"Trabalho em equipe"},
		hardSkills: []string{"Go", "PostgreSQL"},
	},
	{
		name: "Carla Mendes", email: "carla@example.com", city: "Belo Horizonte",
		education:  "Design - UFMG",
		softSkills: []string{"Criatividade", "Empatia"},
		hardSkills: []string{"Figma", "Ilustração"},
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	for _, su := range seedUsers {
		var existing models.User
		if err := db.Where("email = ?", su.email).First(&existing).Error; err == nil {
			log.Printf("user %s already exists, skipping", su.email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		user := models.User{
			ID:           uuid.New(),
			Email:        su.email,
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("failed to create user %s: %v", su.email, err)
		}

		profile := models.Profile{
			ID:         uuid.New(),
			UserID:     user.ID,
			FirstName:  firstName(su.name),
			LastName:   lastName(su.name),
			City:       su.city,
			Education:  su.education,
			SoftSkills: su.softSkills,
			HardSkills: su.hardSkills,
		}
		if err := db.Create(&profile).Error; err != nil {
			log.Fatalf("failed to create profile for %s: %v", su.email, err)
		}

		log.Printf("seeded user %s", su.email)
	}
}

func firstName(name string) string {
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}

func lastName(name string) string {
	for i, r := range name {
		if r == ' ' {
			return name[i+1:]
		}
	}
	return ""
}
