package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/embedding"
	"github.com/khoahotran/talent-match/adapters/persistence"
	authUC "github.com/khoahotran/talent-match/internal/application/usecase/auth"
	opportunityUC "github.com/khoahotran/talent-match/internal/application/usecase/opportunity"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
)

var (
	seedEmail   string
	seedCompany string
)

type seedOpportunity struct {
	Title, Location, Industry, WorkStyle, JobType, Level, Size, Description string
	Min, Max                                                                int
	Skills                                                                  []string
}

var sampleOpportunities = []seedOpportunity{
	{
		Title: "Backend Engineer (Go)", Location: "Ho Chi Minh City", Industry: "fintech",
		WorkStyle: "hybrid", JobType: "full_time", Level: "mid", Size: "51-200",
		Description: "Build payment services in Go on PostgreSQL and Kafka.",
		Min: 1500, Max: 2500, Skills: []string{"go", "postgresql", "kafka"},
	},
	{
		Title: "Data Engineer", Location: "Hanoi", Industry: "e-commerce",
		WorkStyle: "onsite", JobType: "full_time", Level: "senior", Size: "201-500",
		Description: "Own the batch and streaming pipelines behind our recommendation engine.",
		Min: 2500, Max: 4000, Skills: []string{"python", "spark", "airflow"},
	},
	{
		Title: "Frontend Developer", Location: "Remote", Industry: "saas",
		WorkStyle: "remote", JobType: "contract", Level: "junior", Size: "11-50",
		Description: "Ship product features in React and TypeScript with a small team.",
		Skills: []string{"react", "typescript"},
	},
	{
		Title: "Site Reliability Engineer", Location: "Da Nang", Industry: "gaming",
		WorkStyle: "hybrid", JobType: "full_time", Level: "senior", Size: "1000+",
		Description: "Run Kubernetes clusters and the observability stack for live games.",
		Min: 3000, Max: 4500, Skills: []string{"kubernetes", "terraform", "prometheus"},
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo employer with a handful of opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		password := os.Getenv("SEED_PASSWORD")
		if password == "" {
			return errors.New("SEED_PASSWORD must be set")
		}

		pool, err := persistence.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		embedder, err := embedding.New(ctx, cfg, log)
		if err != nil {
			return err
		}

		userRepo := persistence.NewPostgresUserRepo(pool)
		employerRepo := persistence.NewPostgresEmployerRepo(pool)
		opportunityRepo := persistence.NewPostgresOpportunityRepo(pool)
		jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

		signup := authUC.NewSignupEmployerUseCase(userRepo, employerRepo, jwtSvc, log)
		out, err := signup.Execute(ctx, authUC.SignupEmployerInput{
			Email: seedEmail, Password: password, CompanyName: seedCompany,
		})
		if err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				log.Warn("Seed employer already exists, nothing to do", zap.String("email", seedEmail))
				return nil
			}
			return err
		}

		create := opportunityUC.NewCreateOpportunityUseCase(opportunityRepo, employerRepo, embedder, log)
		session := auth.SessionContext{UserID: out.UserID, Role: auth.RoleEmployer}
		for _, s := range sampleOpportunities {
			in := opportunityUC.CreateOpportunityInput{
				Session:         session,
				Title:           s.Title,
				CompanyName:     seedCompany,
				Location:        s.Location,
				Industry:        s.Industry,
				WorkStyle:       s.WorkStyle,
				JobType:         s.JobType,
				ExperienceLevel: s.Level,
				CompanySize:     s.Size,
				Description:     s.Description,
				Skills:          s.Skills,
			}
			if s.Max > 0 {
				lo, hi := s.Min, s.Max
				in.SalaryMin, in.SalaryMax = &lo, &hi
			}
			if _, err := create.Execute(ctx, in); err != nil {
				return fmt.Errorf("seed %q failed: %w", s.Title, err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded employer '%s' with %d opportunities\n", seedEmail, len(sampleOpportunities))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "demo-employer@example.com", "employer login")
	seedCmd.Flags().StringVar(&seedCompany, "company", "Demo Corp", "company name")
}
