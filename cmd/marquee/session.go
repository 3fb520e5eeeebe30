// Copyright (C) 2024 The Marquee Authors.
//
// This file is part of Marquee.
//
// Marquee is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Marquee is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Marquee.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/backend"
	"github.com/defsub/marquee/lib/store"
	"github.com/defsub/marquee/session"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var optName string
var optEmail string
var optRemember bool

func sessions(cfg *config.Config, s store.Store) *session.Manager {
	return session.NewManager(cfg, backend.NewBackend(cfg), s)
}

func prompt(label string, mask bool) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("required")
			}
			return nil
		},
	}
	if mask {
		p.Mask = '*'
	}
	return p.Run()
}

// ask prompts for value unless it was given as a flag.
func ask(value *string, label string, mask bool) error {
	if *value != "" {
		return nil
	}
	v, err := prompt(label, mask)
	if err != nil {
		return err
	}
	*value = v
	return nil
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		in := session.SignUpInput{Name: optName, Email: optEmail}
		if err := ask(&in.Name, "Name", false); err != nil {
			return err
		}
		if err := ask(&in.Email, "Email", false); err != nil {
			return err
		}
		if err := ask(&in.Password, "Password", true); err != nil {
			return err
		}
		if err := ask(&in.Confirm, "Confirm password", true); err != nil {
			return err
		}
		s := openStore(cfg)
		defer s.Close()
		userID, err := sessions(cfg, s).SignUp(context.Background(), in)
		if err != nil {
			return err
		}
		fmt.Printf("signed up %s (%s)\n", in.Email, userID)
		return nil
	},
}

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		in := session.SignInInput{Email: optEmail, Remember: optRemember}
		if err := ask(&in.Email, "Email", false); err != nil {
			return err
		}
		if err := ask(&in.Password, "Password", true); err != nil {
			return err
		}
		s := openStore(cfg)
		defer s.Close()
		sess, err := sessions(cfg, s).SignIn(context.Background(), in)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s until %s\n", sess.User.Email, sess.Expires.Format("Jan 2, 2006"))
		return nil
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		s := openStore(cfg)
		defer s.Close()
		return sessions(cfg, s).SignOut()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "show the signed in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		s := openStore(cfg)
		defer s.Close()
		sess, err := sessions(cfg, s).Current()
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> %s\n", sess.User.Name, sess.User.Email, sess.User.UserID)
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVarP(&optName, "name", "n", "", "name")
	signupCmd.Flags().StringVarP(&optEmail, "email", "e", "", "email")
	signinCmd.Flags().StringVarP(&optEmail, "email", "e", "", "email")
	// a session that is not remembered ends with the process
	signinCmd.Flags().BoolVarP(&optRemember, "remember", "r", true, "remember me")
	rootCmd.AddCommand(signupCmd, signinCmd, signoutCmd, whoamiCmd)
}
