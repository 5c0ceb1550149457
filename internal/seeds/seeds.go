package seeds

func SeedAll() error {
	if err := SeedInstitution(); err != nil {
		return err
	}
	if err := SeedPremises(); err != nil {
		return err
	}
	if err := SeedWorkGroups(); err != nil {
		return err
	}
	if err := SeedPeople(); err != nil {
		return err
	}
	if err := SeedLeaveTypes(); err != nil {
		return err
	}
	if err := SeedAdminUser(); err != nil {
		return err
	}
	return nil
}
