package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/patient-payments/infra/cloudrun"
	"github.com/GregMSThompson/patient-payments/infra/docker"
	"github.com/GregMSThompson/patient-payments/infra/firestore"
	"github.com/GregMSThompson/patient-payments/infra/identity"
	"github.com/GregMSThompson/patient-payments/infra/kms"
	"github.com/GregMSThompson/patient-payments/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service to allow using firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore and create a database for the project
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// key used to encrypt payee addresses at rest
		kmsSvc, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		keyID, err := kms.CreateKey(ctx, prov, "patient-payments", "payee-address")
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, keyID, ident, repo, kmsSvc)
		if err != nil {
			return err
		}

		return nil
	})
}
