package cmd

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/mastersight/internal/tenancy"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			if _, err := db.Exec(`TRUNCATE company_feedbacks, company_tasks, company_users, company_roles,
				company_departments, companies, password_resets, mail_deliveries, users, admins RESTART IDENTITY CASCADE`); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("Master@123"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		if _, err := db.Exec(`INSERT INTO admins (email, name, password_hash, master)
			VALUES ($1, $2, $3, true) ON CONFLICT (email) DO NOTHING`,
			"admin@mastersight.com", "MasterSight Admin", string(hash)); err != nil {
			log.Fatalf("failed to insert admin: %v", err)
		}
		fmt.Println("Seeded admin: admin@mastersight.com")

		ownerID := ensureUser(db, "dono@acme.com.br", "Olivia Dono", "52998224725", string(hash))
		employeeID := ensureUser(db, "ana@acme.com.br", "Ana Souza", "11144477735", string(hash))

		companyID := ensureCompany(db, "Acme Ltda", "12.345.678/0001-95", "acme.com.br", "#2563eb")

		departments := []struct {
			Name        string
			Description string
			Salary      float64
			Roles       []string
		}{
			{"Engenharia", "Desenvolvimento de produto", 12000, []string{"Desenvolvedor", "Tech Lead"}},
			{"Pessoas", "Recrutamento e cultura", 8000, []string{"Analista de RH"}},
			{"Financeiro", "Contas e folha de pagamento", 9000, []string{"Analista Financeiro"}},
		}

		var firstDepartment, firstRole int64
		for _, d := range departments {
			var depID int64
			err := db.Get(&depID, `SELECT id FROM company_departments WHERE company_id = $1 AND name = $2`, companyID, d.Name)
			if errors.Is(err, sql.ErrNoRows) {
				err = db.Get(&depID, `INSERT INTO company_departments (company_id, name, description, salary)
					VALUES ($1, $2, $3, $4) RETURNING id`, companyID, d.Name, d.Description, d.Salary)
			}
			if err != nil {
				log.Fatalf("failed to seed department %s: %v", d.Name, err)
			}
			if firstDepartment == 0 {
				firstDepartment = depID
			}

			for _, roleName := range d.Roles {
				var roleID int64
				err := db.Get(&roleID, `SELECT id FROM company_roles WHERE department_id = $1 AND name = $2`, depID, roleName)
				if errors.Is(err, sql.ErrNoRows) {
					err = db.Get(&roleID, `INSERT INTO company_roles (company_id, department_id, name, salary)
						VALUES ($1, $2, $3, $4) RETURNING id`, companyID, depID, roleName, d.Salary)
				}
				if err != nil {
					log.Fatalf("failed to seed role %s: %v", roleName, err)
				}
				if firstRole == 0 {
					firstRole = roleID
				}
			}
			fmt.Printf("Seeded department: %s\n", d.Name)
		}

		ownerFlags, _ := tenancy.PresetFlags(tenancy.PresetOwner)
		employeeFlags, _ := tenancy.PresetFlags(tenancy.PresetEmployee)
		ensureMember(db, companyID, ownerID, 0, 0, ownerFlags)
		ensureMember(db, companyID, employeeID, firstDepartment, firstRole, employeeFlags)

		fmt.Println("Seeded members: dono@acme.com.br (owner), ana@acme.com.br (employee); password Master@123")
	},
}

func ensureUser(db *sqlx.DB, email, name, cpf, hash string) int64 {
	var id int64
	err := db.Get(&id, `INSERT INTO users (email, name, cpf, password_hash) VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name RETURNING id`, email, name, cpf, hash)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	return id
}

func ensureCompany(db *sqlx.DB, name, cnpj, domain, color string) int64 {
	var id int64
	err := db.Get(&id, `SELECT id FROM companies WHERE domain = $1`, domain)
	if errors.Is(err, sql.ErrNoRows) {
		err = db.Get(&id, `INSERT INTO companies (name, cnpj, domain, color) VALUES ($1, $2, $3, $4) RETURNING id`,
			name, cnpj, domain, color)
		fmt.Println("Seeded company:", name)
	}
	if err != nil {
		log.Fatalf("failed to seed company %s: %v", name, err)
	}
	return id
}

func ensureMember(db *sqlx.DB, companyID, userID, departmentID, roleID int64, flags []string) {
	perms, err := json.Marshal(flags)
	if err != nil {
		log.Fatalf("failed to encode permissions: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO company_users (company_id, user_id, department_id, role_id, permissions, status)
		VALUES ($1, $2, $3, $4, $5, 'active')
		ON CONFLICT (company_id, user_id) DO UPDATE SET permissions = EXCLUDED.permissions`,
		companyID, userID, departmentID, roleID, string(perms)); err != nil {
		log.Fatalf("failed to seed membership for user %d: %v", userID, err)
	}
}
