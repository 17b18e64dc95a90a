package signal

// Built-in keyword vocabulary. All matching runs over lowercased text,
// so patterns are written lowercase. Deployments append to these lists
// through configuration rather than editing code.

var rejectionPatterns = []string{
	`unfortunately`,
	`regret to inform`,
	`not (be )?moving forward`,
	`not selected`,
	`not (been )?chosen`,
	`decided not to proceed`,
	`will not be (proceeding|continuing)`,
	`position has been filled`,
	`role has been filled`,
	`pursuing other candidates`,
	`other candidates more closely`,
	`decided to (pursue|move forward with) other`,
	`not the right fit`,
	`not a (good )?match`,
	`gone with another candidate`,
	`won't be advancing`,
	`unable to offer`,
	`not able to offer`,
	`will not be offering`,
	`your application (was|has been) unsuccessful`,
	`thank you for your interest.{0,50}however`,
	`after careful (consideration|review).{0,100}(not|decided|unfortunately)`,
}

var interviewPatterns = []string{
	`schedule (an? )?(phone |video |virtual |in-person )?interview`,
	`interview (with|at|for)`,
	`interview invitation`,
	`invit(e|ing) you (to|for).{0,30}interview`,
	`would you be available.{0,50}(call|chat|interview|meet)`,
	`set up (a |an )?(time|call|meeting|interview)`,
	`book (a |an )?(time|slot|interview)`,
	`next (step|stage|round)`,
	`proceed(ing)? (to|with).{0,20}(interview|next)`,
	`pleased to (invite|inform|let you know)`,
	`excited to (invite|inform|move)`,
	`like to (speak|talk|chat|meet) with you`,
	`like to schedule`,
	`calendly\.com`,
	`goodtime\.io`,
	`pick a time`,
	`select a time`,
	`choose a time`,
	`availability.{0,30}(interview|call|chat|meeting)`,
}

var offerPatterns = []string{
	`offer (letter|of employment)`,
	`(pleased|happy|excited) to (offer|extend)`,
	`extend (an |a )?(job )?offer`,
	`we.{0,20}(like|want) to offer you`,
	`offer you (the |a )?(position|role|job)`,
	`congratulations.{0,50}(offer|accepted|position)`,
	`terms of (employment|your offer)`,
	`compensation (package|details)`,
	`start date`,
	`onboarding`,
}

var confirmationPatterns = []string{
	`application received`,
	`application submitted`,
	`application has been submitted`,
	`thank you for applying`,
	`thanks for applying`,
	`application confirmation`,
	`we received your application`,
	`we have received your`,
	`your application has been`,
	`your application was`,
	`submitted your application`,
	`successfully submitted`,
	`successfully applied`,
	`thank you for your interest`,
	`thanks for your interest`,
	`you applied`,
}

var outreachPatterns = []string{
	`came across your (profile|resume|background|linkedin)`,
	`found your (profile|resume|background|linkedin)`,
	`saw your (profile|resume|background|linkedin)`,
	`noticed your (profile|resume|background|linkedin)`,
	`i'?m reaching out`,
	`i am reaching out`,
	`reaching out (to you )?(about|regarding|because)`,
	`wanted to reach out`,
	`i wanted to (connect|reach out|touch base|introduce)`,
	`you'?d be (a )?(great|perfect|ideal|excellent) (fit|candidate|match)`,
	`you might be (interested|a good fit|a great fit)`,
	`(perfect|great|ideal) (fit|candidate|match) for`,
	`(i|we) have (a |an )?(opportunity|role|position)`,
	`(i|we)'?ve got (a |an )?(opportunity|role|position)`,
	`exciting opportunity`,
	`open (role|position|opportunity)`,
	`are you (open to|interested in|looking for)`,
	`would you be (open to|interested in)`,
	`are you currently (looking|open|exploring)`,
	`looking for (new opportunities|a new role|your next)`,
	`on behalf of (my |our )?client`,
	`my client (is |has )`,
	`one of (my |our )clients`,
	`passive candidates`,
	`your (background|experience|skills) (caught|stood out|impressed|align)`,
	`based on your (experience|background|profile|linkedin)`,
	`(quick|brief) (call|chat|conversation)`,
	`(15|20) (minute|min) (call|chat)`,
	`let me know if.{0,30}(interested|open to)`,
}

var outreachSubjectPatterns = []string{
	`opportunity`,
	`interested\?`,
	`(perfect|great) fit`,
	`quick question`,
	`reaching out`,
	`your (profile|background|experience)`,
	`new role`,
	`open (role|position)`,
}

var applicationReferencePatterns = []string{
	`your application`,
	`you applied`,
	`application (to|at|for|with)`,
	`(role|position) you applied`,
	`regarding your.{0,20}application`,
	`thank(s| you) for applying`,
	`(after )?review(ing|ed) your application`,
	`your recent application`,
}

// Job-alert digest phrases, matched against the subject line only.
var jobAlertKeywords = []string{
	"jobs matching",
	"job match",
	"jobs for you",
	"recommended jobs",
	"jobs you might be interested",
	"jobs you may be interested",
	"new jobs for",
	"jobs based on",
	"similar jobs",
	"job alert",
	"job alerts",
	"jobs in your area",
	"top job picks",
	"job recommendations",
	"daily job digest",
	"weekly job digest",
}

// Applicant-tracking-system sender domains. A match here raises trust
// for confirmation and rejection detection and disqualifies the sender
// as a personal contact.
var atsDomains = []string{
	"greenhouse.io",
	"greenhouse-mail.io",
	"lever.co",
	"hire.lever.co",
	"workday.com",
	"myworkdayjobs.com",
	"icims.com",
	"smartrecruiters.com",
	"workable.com",
	"workablemail.com",
	"jobvite.com",
	"taleo.net",
	"taleo.com",
	"ashbyhq.com",
	"bamboohr.com",
	"applytojob.com",
	"jazz.co",
	"breezy.hr",
	"recruiterbox.com",
	"zohorecruit.com",
	"indeed.com",
	"indeedemail.com",
	"linkedin.com",
	"e.linkedin.com",
	"joinhandshake.com",
	"m.joinhandshake.com",
}

// Personal mailbox providers. Mail from these is a human follow-up, not
// an automated confirmation or rejection.
var freemailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"aol.com",
	"icloud.com",
	"me.com",
	"live.com",
	"msn.com",
}

// Local parts used by company recruiting mailboxes.
var careersLocalParts = []string{
	"careers",
	"jobs",
	"recruiting",
	"recruitment",
	"talent",
	"talentacquisition",
	"hr",
	"hiring",
	"staffing",
	"humanresources",
	"people",
	"employment",
}
